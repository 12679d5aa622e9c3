package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"tdc-backend/internal/upload"
	"tdc-backend/internal/utils"
)

var ErrStorage = errors.New("storage error")

// Stored describes an object after it has been written.
type Stored struct {
	URL      string
	Name     string
	Size     string
	Bytes    int64
	MIMEType string
}

type Service struct {
	store  Store
	policy upload.Policy
	now    func() time.Time
}

// NewService enforces policy on every write. The API client checks the same
// policy before sending.
func NewService(store Store, policy upload.Policy) *Service {
	return &Service{store: store, policy: policy, now: time.Now}
}

func (s *Service) Policy() upload.Policy { return s.policy }

// Save checks blob against the policy and writes it. Policy failures are
// returned as *upload.RejectedError.
func (s *Service) Save(ctx context.Context, blob upload.Blob, kind upload.Kind) (Stored, error) {
	mime, err := s.policy.Check(blob, kind)
	if err != nil {
		return Stored{}, err
	}

	key := s.objectKey(blob.Name, mime, kind)
	url, err := s.store.Put(ctx, key, mime, blob.Data)
	if err != nil {
		return Stored{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	name := strings.TrimSpace(filepath.Base(blob.Name))
	if name == "" || name == "." {
		name = path.Base(key)
	}
	return Stored{
		URL:      url,
		Name:     name,
		Size:     humanize.Bytes(uint64(blob.Size())),
		Bytes:    blob.Size(),
		MIMEType: mime,
	}, nil
}

// objectKey is <kind>s/<yyyy>/<mm>/<uuid>-<slug><ext>.
func (s *Service) objectKey(name, mime string, kind upload.Kind) string {
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if m := mimetype.Lookup(mime); m != nil && m.Extension() != "" {
		ext = m.Extension()
	}
	if ext != "" && !validExt(ext) {
		ext = ""
	}

	slug := utils.Slugify(base)
	if len(slug) > 60 {
		slug = strings.Trim(slug[:60], "-")
	}
	file := uuid.NewString()
	if slug != "" {
		file += "-" + slug
	}

	folder := "files"
	if kind == upload.KindImage {
		folder = "images"
	}
	now := s.now().UTC()
	return fmt.Sprintf("%s/%04d/%02d/%s%s", folder, now.Year(), int(now.Month()), file, ext)
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 10 || ext[0] != '.' {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
