package logo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"productshot/config"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		size int64
		mime string
		want error
	}{
		{"png", 1024, "image/png", nil},
		{"jpg_alias", 1024, "image/jpg", nil},
		{"svg_with_params", 1024, "image/svg+xml; charset=utf-8", nil},
		{"exact_limit", MaxSize, "image/jpeg", nil},
		{"too_large", MaxSize + 1, "image/png", ErrTooLarge},
		{"gif", 1024, "image/gif", ErrUnsupportedType},
		{"empty_type", 1024, "", ErrUnsupportedType},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := Validate(c.size, c.mime); !errors.Is(err, c.want) {
				t.Fatalf("got %v want %v", err, c.want)
			}
		})
	}
}

func TestUpload(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/api/upload-logo" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if _, _, err := r.FormFile("logo"); err != nil {
			t.Errorf("missing logo field: %v", err)
		}
		_, _ = w.Write([]byte(`{"filename":"logo-123.png"}`))
	}))
	defer ts.Close()

	u := NewUploader(config.GenerationConfig{BaseUrl: ts.URL + "/api"}, ts.Client())

	t.Run("success", func(t *testing.T) {
		name, err := u.Upload(context.Background(), File{Name: "brand.png", ContentType: "image/png", Size: 9, Body: strings.NewReader("png-bytes")})
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		if name != "logo-123.png" {
			t.Fatalf("filename = %q", name)
		}
	})

	t.Run("rejected_before_network", func(t *testing.T) {
		before := hits.Load()
		_, err := u.Upload(context.Background(), File{Name: "brand.gif", ContentType: "image/gif", Size: 9, Body: strings.NewReader("gif")})
		if !errors.Is(err, ErrUnsupportedType) {
			t.Fatalf("err = %v", err)
		}
		_, err = u.Upload(context.Background(), File{Name: "huge.png", ContentType: "image/png", Size: MaxSize + 1, Body: strings.NewReader("")})
		if !errors.Is(err, ErrTooLarge) {
			t.Fatalf("err = %v", err)
		}
		if hits.Load() != before {
			t.Fatalf("invalid files must not reach the service")
		}
	})
}

func TestUploadServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	u := NewUploader(config.GenerationConfig{BaseUrl: ts.URL + "/api"}, ts.Client())
	_, err := u.Upload(context.Background(), File{Name: "brand.png", ContentType: "image/png", Size: 3, Body: strings.NewReader("png")})
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("err = %v", err)
	}
}

func TestUploaderEndpoint(t *testing.T) {
	u := NewUploader(config.GenerationConfig{BaseUrl: "http://localhost:3000/api"}, nil)
	if got := u.Endpoint(); got != "http://localhost:3000/api/upload-logo" {
		t.Fatalf("endpoint = %q", got)
	}
}
