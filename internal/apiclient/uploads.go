package apiclient

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/dustin/go-humanize"

	"tdc-backend/internal/upload"
)

// Uploader implements upload.Uploader against /uploads/files and
// /uploads/images. Files are checked against policy before any request.
type Uploader struct {
	client *Client
	policy upload.Policy
}

func (c *Client) Uploader(policy upload.Policy) *Uploader {
	return &Uploader{client: c, policy: policy}
}

type fileUploadResponse struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	FileSize string `json:"fileSize"`
	FileType string `json:"fileType"`
}

type imageUploadResponse struct {
	SecureURL string `json:"secure_url"`
}

func (u *Uploader) Upload(ctx context.Context, blob upload.Blob, kind upload.Kind) (upload.Result, error) {
	mime, err := u.policy.Check(blob, kind)
	if err != nil {
		return upload.Result{}, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", blob.Name)
	if err != nil {
		return upload.Result{}, &upload.TransportError{Err: err}
	}
	if _, err := part.Write(blob.Data); err != nil {
		return upload.Result{}, &upload.TransportError{Err: err}
	}
	if err := mw.Close(); err != nil {
		return upload.Result{}, &upload.TransportError{Err: err}
	}

	path := "/uploads/files"
	if kind == upload.KindImage {
		path = "/uploads/images"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.client.baseURL+path, &body)
	if err != nil {
		return upload.Result{}, &upload.TransportError{Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	result := upload.Result{Name: blob.Name, Size: humanize.Bytes(uint64(blob.Size())), MIMEType: mime}
	if kind == upload.KindImage {
		var out imageUploadResponse
		if err := u.client.send(req, true, &out); err != nil {
			return upload.Result{}, uploadError(err)
		}
		result.URL = out.SecureURL
	} else {
		var out fileUploadResponse
		if err := u.client.send(req, true, &out); err != nil {
			return upload.Result{}, uploadError(err)
		}
		result.URL = out.FileURL
		if out.FileName != "" {
			result.Name = out.FileName
		}
		if out.FileSize != "" {
			result.Size = out.FileSize
		}
		if out.FileType != "" {
			result.MIMEType = out.FileType
		}
	}
	if result.URL == "" {
		return upload.Result{}, &upload.TransportError{Err: errors.New("upload response without url")}
	}
	return result, nil
}

// uploadError keeps Unauthorized visible to callers and folds everything else
// into the upload taxonomy.
func uploadError(err error) error {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return &upload.TransportError{Err: err}
	}
	switch {
	case errors.Is(apiErr, ErrUnauthorized):
		return apiErr
	case errors.Is(apiErr, ErrValidationRejected):
		return upload.Rejected("%s", apiErr.Message)
	default:
		return &upload.TransportError{Err: apiErr}
	}
}
