package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

const maxSnippet = 8 << 10

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL     string
	Status  int
	Snippet string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %s: %d %s: %s", e.URL, e.Status, http.StatusText(e.Status), e.Snippet)
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxSnippet))
	return strings.TrimSpace(string(b))
}

// FilePart is a single file sent as multipart/form-data.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Body        io.Reader
}

// PostFile uploads one file as multipart/form-data and decodes the JSON reply into r.
func PostFile[r any](h *http.Client, ctx context.Context, url string, part FilePart, headers map[string]string) (r, error) {

	var response r

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	mh := make(textproto.MIMEHeader)
	mh.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, part.Field, part.Filename))
	if part.ContentType != "" {
		mh.Set("Content-Type", part.ContentType)
	} else {
		mh.Set("Content-Type", "application/octet-stream")
	}
	fw, err := w.CreatePart(mh)
	if err != nil {
		return response, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, part.Body); err != nil {
		return response, fmt.Errorf("copy form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return response, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return response, err
	}
	for key, val := range headers {
		req.Header.Add(key, val)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := h.Do(req)
	if err != nil {
		return response, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return response, &StatusError{URL: url, Status: resp.StatusCode, Snippet: readSnippet(resp.Body)}
	}

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return response, err
	}
	if err := json.Unmarshal(responseBytes, &response); err != nil {
		snippet := strings.TrimSpace(string(responseBytes))
		if len(snippet) > maxSnippet {
			snippet = snippet[:maxSnippet]
		}
		return response, fmt.Errorf("unmarshal %s: %w: %s", url, err, snippet)
	}

	return response, nil
}

// Download issues a GET and hands back the open response on 2xx. The caller
// closes the body.
func Download(h *http.Client, ctx context.Context, url string, headers map[string]string) (*http.Response, error) {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	for key, val := range headers {
		req.Header.Add(key, val)
	}

	resp, err := h.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := readSnippet(resp.Body)
		_ = resp.Body.Close()
		return nil, &StatusError{URL: url, Status: resp.StatusCode, Snippet: snippet}
	}

	return resp, nil
}
