// Package logo uploads overlay images to the generation service. The returned
// file name goes into generation.Logo.Content.
package logo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"productshot/config"
	"productshot/internal/clients/transport"
	"productshot/internal/imageurl"

	"github.com/charmbracelet/log"
)

const (
	MaxSize    = 2 << 20
	uploadPath = "/api/upload-logo"
	formField  = "logo"
)

var AllowedTypes = []string{"image/png", "image/jpeg", "image/jpg", "image/svg+xml"}

var (
	ErrTooLarge        = errors.New("logo file must be less than 2MB")
	ErrUnsupportedType = errors.New("please upload a PNG, JPG, or SVG file")
	ErrUploadFailed    = errors.New("failed to upload logo")
)

// Validate checks a logo before anything is sent over the network.
func Validate(size int64, mimeType string) error {
	if size > MaxSize {
		return ErrTooLarge
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	for _, t := range AllowedTypes {
		if mimeType == t {
			return nil
		}
	}
	return ErrUnsupportedType
}

type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type uploadResponse struct {
	Filename string `json:"filename"`
}

type Uploader struct {
	httpClient *http.Client
	endpoint   string
	log        *log.Logger
}

// NewUploader targets {origin of BaseUrl}/api/upload-logo.
func NewUploader(cfg config.GenerationConfig, httpClient *http.Client) *Uploader {
	if httpClient == nil {
		timeout := cfg.Timeout()
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Uploader{
		httpClient: httpClient,
		endpoint:   imageurl.BackendOrigin(cfg.BaseUrl) + uploadPath,
		log:        log.With("component", "logo"),
	}
}

func (u *Uploader) Endpoint() string {
	return u.endpoint
}

// Upload validates f and posts it as the multipart "logo" field. It returns
// the file name the service stored the logo under.
func (u *Uploader) Upload(ctx context.Context, f File) (string, error) {
	if err := Validate(f.Size, f.ContentType); err != nil {
		return "", err
	}

	resp, err := transport.PostFile[uploadResponse](u.httpClient, ctx, u.endpoint, transport.FilePart{
		Field:       formField,
		Filename:    f.Name,
		ContentType: f.ContentType,
		Body:        io.LimitReader(f.Body, MaxSize+1),
	}, nil)
	if err != nil {
		u.log.Error("logo upload failed", "file", f.Name, "err", err)
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if strings.TrimSpace(resp.Filename) == "" {
		return "", fmt.Errorf("%w: response has no filename", ErrUploadFailed)
	}

	u.log.Info("logo uploaded", "file", f.Name, "stored", resp.Filename)
	return resp.Filename, nil
}
