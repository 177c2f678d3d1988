package utils

import (
	"path/filepath"
	"testing"
)

func TestFileNameFromCd(t *testing.T) {
	cases := map[string]string{
		`attachment; filename="mug.png"`:        "mug.png",
		`inline; filename="../../etc/passwd"`:    "passwd",
		`attachment; filename="..\\win\\x.png"`: "x.png",
		`not a header;;`:                         "",
		`attachment`:                             "",
	}
	for cd, want := range cases {
		if got := FileNameFromCd(cd); got != want {
			t.Fatalf("FileNameFromCd(%q) = %q want %q", cd, got, want)
		}
	}
}

func TestSafeJoin(t *testing.T) {
	dir := t.TempDir()
	got, err := SafeJoin(dir, "a.png")
	if err != nil {
		t.Fatalf("safe join: %v", err)
	}
	if got != filepath.Join(dir, "a.png") {
		t.Fatalf("got %q", got)
	}
	for _, bad := range []string{"../a.png", "", ".", "sub/../../a.png"} {
		if _, err := SafeJoin(dir, bad); err == nil {
			t.Fatalf("SafeJoin(%q) should fail", bad)
		}
	}
}

func TestNewRequestID(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	if a == "" || a == b {
		t.Fatalf("ids should be unique: %q %q", a, b)
	}
}
