package content

// Language is the closed set of languages a code section can declare.
type Language string

const (
	LangPlaintext  Language = "plaintext"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangJava       Language = "java"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangCSharp     Language = "csharp"
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangRuby       Language = "ruby"
	LangPHP        Language = "php"
	LangHTML       Language = "html"
	LangCSS        Language = "css"
	LangSQL        Language = "sql"
	LangBash       Language = "bash"
	LangJSON       Language = "json"

	DefaultLanguage = LangJavaScript
)

var supportedLanguages = []Language{
	LangPlaintext, LangJavaScript, LangTypeScript, LangPython, LangJava, LangC, LangCPP,
	LangCSharp, LangGo, LangRust, LangRuby, LangPHP, LangHTML, LangCSS, LangSQL, LangBash, LangJSON,
}

func SupportedLanguages() []Language {
	out := make([]Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

func (l Language) Valid() bool {
	for _, s := range supportedLanguages {
		if s == l {
			return true
		}
	}
	return false
}
