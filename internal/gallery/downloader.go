// Package gallery saves generated images locally, optionally with thumbnails.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"productshot/config"
	"productshot/internal/clients/transport"
	"productshot/internal/imageurl"
	"productshot/utils"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
)

var ErrNotLoadable = errors.New("image url is not an absolute http(s) url")

// Saved reports the outcome for one image. A failed image has Err set and
// never affects the others.
type Saved struct {
	URL       string
	Path      string
	Thumbnail string
	Err       error
}

type Downloader struct {
	httpClient    *http.Client
	maxConcurrent int
	thumbnails    bool
	thumbnailSize int
	now           func() time.Time
	log           *log.Logger
}

func NewDownloader(cfg config.GalleryConfig, httpClient *http.Client) *Downloader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	size := cfg.ThumbnailSize
	if size <= 0 {
		size = config.DefaultThumbnailSize
	}
	return &Downloader{
		httpClient:    httpClient,
		maxConcurrent: maxConcurrent,
		thumbnails:    cfg.Thumbnails,
		thumbnailSize: size,
		now:           time.Now,
		log:           log.With("component", "gallery"),
	}
}

// DownloadAll saves every url into dir. Results keep the order of urls.
// The returned error is only set when dir itself cannot be prepared.
func (d *Downloader) DownloadAll(ctx context.Context, urls []string, dir string) ([]Saved, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create gallery dir: %w", err)
	}

	results := make([]Saved, len(urls))
	var group errgroup.Group
	group.SetLimit(d.maxConcurrent)

	for i, u := range urls {
		group.Go(func() error {
			results[i] = d.downloadOne(ctx, u, dir, i)
			return nil
		})
	}
	_ = group.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	d.log.Info("gallery downloaded", "dir", dir, "images", len(urls), "failed", failed)
	return results, nil
}

func (d *Downloader) downloadOne(ctx context.Context, url, dir string, index int) Saved {
	saved := Saved{URL: url}
	if !imageurl.IsLoadable(url) {
		saved.Err = fmt.Errorf("%w: %q", ErrNotLoadable, url)
		return saved
	}

	resp, err := transport.Download(d.httpClient, ctx, url, nil)
	if err != nil {
		d.log.Warn("image download failed", "url", url, "err", err)
		saved.Err = err
		return saved
	}
	defer resp.Body.Close()

	filename := ""
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		filename = utils.FileNameFromCd(cd)
	}
	if filename == "" {
		filename = imageurl.DownloadName(url, d.now())
	}
	filename = uniqueName(sanitizeFilename(filename), index)

	finalPath, err := utils.SafeJoin(dir, filename)
	if err != nil {
		saved.Err = err
		return saved
	}
	if err := writeAtomic(finalPath, resp.Body); err != nil {
		saved.Err = err
		return saved
	}
	saved.Path = finalPath

	if d.thumbnails {
		thumb, err := d.writeThumbnail(finalPath)
		if err != nil {
			d.log.Warn("thumbnail failed", "path", finalPath, "err", err)
		} else {
			saved.Thumbnail = thumb
		}
	}
	return saved
}

func writeAtomic(finalPath string, body io.Reader) error {
	tmpPath := finalPath + ".part"

	out, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	_, copyErr := io.Copy(out, body)
	closeErr := out.Close()

	if copyErr != nil {
		_ = os.Remove(tmpPath)
		return copyErr
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return closeErr
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func (d *Downloader) writeThumbnail(src string) (string, error) {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	thumb := imaging.Fit(img, d.thumbnailSize, d.thumbnailSize, imaging.Lanczos)

	ext := filepath.Ext(src)
	dst := strings.TrimSuffix(src, ext) + ".thumb.jpg"
	if err := imaging.Save(thumb, dst, imaging.JPEGQuality(75)); err != nil {
		return "", fmt.Errorf("save thumbnail: %w", err)
	}
	return dst, nil
}

func sanitizeFilename(filename string) string {
	filename = filepath.Base(strings.TrimSpace(filename))

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	if ext == "" || ext == "." {
		ext = ".png"
	}

	stem = strings.Join(strings.Fields(stem), "-")
	stem = strings.Trim(stem, ".-")
	if stem == "" {
		stem = "product-image"
	}
	return stem + strings.ReplaceAll(ext, " ", "")
}

// uniqueName prefixes the gallery position so two images with the same
// server-side name do not overwrite each other.
func uniqueName(filename string, index int) string {
	return fmt.Sprintf("%02d-%s", index+1, filename)
}
