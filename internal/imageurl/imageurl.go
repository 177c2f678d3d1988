// Package imageurl turns image references returned by the generation service
// into absolute URLs a browser can load directly.
package imageurl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"path"
	"strings"
	"time"
)

// ImageRef is one entry of a generation response. Older services return bare
// path strings, current ones return {url, filename}; both decode into ImageRef.
type ImageRef struct {
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
}

func (r *ImageRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = ImageRef{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = ImageRef{URL: s}
		return nil
	}
	if len(b) == 0 || b[0] != '{' {
		return fmt.Errorf("invalid image reference: %q", string(b))
	}

	type plain ImageRef
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = ImageRef(p)
	return nil
}

func isAbsolute(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// BackendOrigin returns scheme://host[:port] of the configured API base URL.
// A base that is not an absolute URL falls back to dropping its "/api" suffix.
func BackendOrigin(base string) string {
	base = strings.TrimSpace(base)
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.TrimSuffix(strings.TrimRight(base, "/"), "/api")
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	if h, port, err := net.SplitHostPort(host); err == nil {
		if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
			host = h
			if strings.Contains(h, ":") {
				host = "[" + h + "]"
			}
		}
	}
	return scheme + "://" + host
}

// Normalize resolves every reference against the origin of base. Absolute
// http(s) URLs pass through unchanged, so normalizing twice is a no-op.
func Normalize(base string, refs []ImageRef) []string {
	out := make([]string, 0, len(refs))
	if len(refs) == 0 {
		return out
	}

	origin := BackendOrigin(base)
	for _, ref := range refs {
		out = append(out, Resolve(origin, ref.URL))
	}
	return out
}

// Resolve joins a single path onto an already computed origin.
func Resolve(origin, p string) string {
	if isAbsolute(p) {
		return p
	}
	return origin + p
}

// Paths wraps legacy string entries so they can go through Normalize.
func Paths(paths ...string) []ImageRef {
	refs := make([]ImageRef, 0, len(paths))
	for _, p := range paths {
		refs = append(refs, ImageRef{URL: p})
	}
	return refs
}

// IsLoadable reports whether s is an absolute http or https URL.
func IsLoadable(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// DownloadName picks the file name offered for a download link: the last
// path segment of the URL, or product-image-<unix millis>.png.
func DownloadName(s string, now time.Time) string {
	if u, err := url.Parse(s); err == nil {
		name := path.Base(u.Path)
		if name != "." && name != "/" && name != "" {
			return name
		}
	}
	return fmt.Sprintf("product-image-%d.png", now.UnixMilli())
}
