package gallery

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"productshot/config"
	"productshot/internal/clients/transport"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func imageServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/generated/named.png":
			w.Header().Set("Content-Disposition", `attachment; filename="mug shot.png"`)
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(body)
		case "/generated/plain.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(body)
		default:
			http.Error(w, "missing", http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadAllSavesInOrder(t *testing.T) {
	srv := imageServer(t, pngBytes(t, 8, 8))
	dir := t.TempDir()

	d := NewDownloader(config.GalleryConfig{MaxConcurrent: 2}, srv.Client())
	saved, err := d.DownloadAll(context.Background(), []string{
		srv.URL + "/generated/named.png",
		srv.URL + "/generated/plain.png",
	}, dir)
	if err != nil {
		t.Fatalf("DownloadAll: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("expected 2 results, got %d", len(saved))
	}

	if got := filepath.Base(saved[0].Path); got != "01-mug-shot.png" {
		t.Fatalf("first name = %q", got)
	}
	if got := filepath.Base(saved[1].Path); got != "02-plain.png" {
		t.Fatalf("second name = %q", got)
	}
	for _, s := range saved {
		if s.Err != nil {
			t.Fatalf("unexpected error for %s: %v", s.URL, s.Err)
		}
		if _, err := os.Stat(s.Path); err != nil {
			t.Fatalf("stat %s: %v", s.Path, err)
		}
		if _, err := os.Stat(s.Path + ".part"); !os.IsNotExist(err) {
			t.Fatalf("temporary file left behind for %s", s.Path)
		}
		if s.Thumbnail != "" {
			t.Fatalf("thumbnail written without being enabled")
		}
	}
}

func TestDownloadAllIsolatesFailures(t *testing.T) {
	srv := imageServer(t, pngBytes(t, 4, 4))
	dir := t.TempDir()

	d := NewDownloader(config.GalleryConfig{}, srv.Client())
	saved, err := d.DownloadAll(context.Background(), []string{
		srv.URL + "/generated/missing.png",
		"/generated/relative.png",
		srv.URL + "/generated/plain.png",
	}, dir)
	if err != nil {
		t.Fatalf("DownloadAll: %v", err)
	}

	var statusErr *transport.StatusError
	if !errors.As(saved[0].Err, &statusErr) || statusErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", saved[0].Err)
	}
	if !errors.Is(saved[1].Err, ErrNotLoadable) {
		t.Fatalf("expected ErrNotLoadable, got %v", saved[1].Err)
	}
	if saved[2].Err != nil || saved[2].Path == "" {
		t.Fatalf("third image should succeed, got %+v", saved[2])
	}
}

func TestDownloadAllWritesThumbnails(t *testing.T) {
	srv := imageServer(t, pngBytes(t, 64, 32))
	dir := t.TempDir()

	d := NewDownloader(config.GalleryConfig{Thumbnails: true, ThumbnailSize: 16}, srv.Client())
	saved, err := d.DownloadAll(context.Background(), []string{srv.URL + "/generated/plain.png"}, dir)
	if err != nil {
		t.Fatalf("DownloadAll: %v", err)
	}
	if saved[0].Err != nil {
		t.Fatalf("download: %v", saved[0].Err)
	}
	if !strings.HasSuffix(saved[0].Thumbnail, ".thumb.jpg") {
		t.Fatalf("thumbnail path = %q", saved[0].Thumbnail)
	}

	f, err := os.Open(saved[0].Thumbnail)
	if err != nil {
		t.Fatalf("open thumbnail: %v", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if cfg.Width != 16 || cfg.Height != 8 {
		t.Fatalf("thumbnail size = %dx%d, want 16x8", cfg.Width, cfg.Height)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"mug shot.png":     "mug-shot.png",
		"../../etc/passwd": "passwd.png",
		"  ":               "product-image.png",
		".hidden.jpg":      "hidden.jpg",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
