package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPostFile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("logo")
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		body, _ := io.ReadAll(file)
		if string(body) != "png-bytes" {
			t.Errorf("body = %q", body)
		}
		if ct := header.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("part content-type = %q", ct)
		}
		_, _ = w.Write([]byte(`{"filename":"` + header.Filename + `"}`))
	}))
	defer ts.Close()

	type reply struct {
		Filename string `json:"filename"`
	}
	got, err := PostFile[reply](ts.Client(), context.Background(), ts.URL, FilePart{
		Field:       "logo",
		Filename:    "brand.png",
		ContentType: "image/png",
		Body:        strings.NewReader("png-bytes"),
	}, nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if got.Filename != "brand.png" {
		t.Fatalf("filename = %q", got.Filename)
	}
}

func TestDownloadStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := Download(ts.Client(), context.Background(), ts.URL+"/x.png", nil)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Status != http.StatusNotFound || se.Snippet != "gone" {
		t.Fatalf("status error = %+v", se)
	}
}
