package upload

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Policy is the client-side check performed before any network call.
type Policy struct {
	MaxImageBytes int64
	MaxFileBytes  int64
	ImageTypes    []string
	// FileTypes restricts raw uploads when non-empty.
	FileTypes []string
}

func DefaultPolicy() Policy {
	return Policy{
		MaxImageBytes: 10 << 20,
		MaxFileBytes:  50 << 20,
		ImageTypes:    []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/svg+xml"},
	}
}

// Check returns the detected MIME type of blob, or a RejectedError.
func (p Policy) Check(blob Blob, kind Kind) (string, error) {
	if len(blob.Data) == 0 {
		return "", Rejected("file %q is empty", blob.Name)
	}

	detected := mimetype.Detect(blob.Data)
	mime := detected.String()
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}

	switch kind {
	case KindImage:
		if p.MaxImageBytes > 0 && blob.Size() > p.MaxImageBytes {
			return "", Rejected("image exceeds %d bytes", p.MaxImageBytes)
		}
		if !matches(detected, p.ImageTypes) {
			return "", Rejected("image type %s not allowed", mime)
		}
	case KindRaw:
		if p.MaxFileBytes > 0 && blob.Size() > p.MaxFileBytes {
			return "", Rejected("file exceeds %d bytes", p.MaxFileBytes)
		}
		if len(p.FileTypes) > 0 && !matches(detected, p.FileTypes) {
			return "", Rejected("file type %s not allowed", mime)
		}
	default:
		return "", Rejected("unknown upload kind %q", kind)
	}
	return mime, nil
}

func matches(detected *mimetype.MIME, allowed []string) bool {
	for _, a := range allowed {
		if detected.Is(a) {
			return true
		}
	}
	return false
}
