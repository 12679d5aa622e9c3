package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tdc-backend/internal/content"
)

func TestSectionsRendersEachType(t *testing.T) {
	code, err := content.NewCodeSection("a < b", content.LangGo)
	require.NoError(t, err)
	sections := []content.Section{
		content.NewTextSection("# Title\n\nSome **bold** text"),
		code,
		content.NewImageSection("https://cdn.example.com/a.png", "A diagram"),
		{ID: content.PersistedID("f1"), Content: content.FileContent{URL: "https://cdn.example.com/n.pdf", Name: "notes.pdf", Size: "12 kB"}},
	}

	out, err := Sections(sections)
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, `<code class="language-go">a &lt; b</code>`)
	assert.Contains(t, out, `<figcaption>A diagram</figcaption>`)
	assert.Contains(t, out, `notes.pdf</a>`)
	assert.Contains(t, out, `data-section-id="f1"`)
}

func TestSectionsStripsScripts(t *testing.T) {
	out, err := Sections([]content.Section{content.NewTextSection("hi <script>alert(1)</script>")})
	require.NoError(t, err)
	assert.False(t, strings.Contains(out, "<script>"), out)
}

func TestPostIncludesTitle(t *testing.T) {
	p := content.NewBlogPost("Hello & welcome", "Ann")
	p.Sections = append(p.Sections, content.NewTextSection("body"))
	out, err := Post(p)
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Hello &amp; welcome</h1>")
	assert.Contains(t, out, "<p>body</p>")
}
