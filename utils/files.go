package utils

import (
	"errors"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileNameFromCd extracts the filename parameter of a Content-Disposition
// header, reduced to its base name.
func FileNameFromCd(cd string) string {
	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return ""
	}
	fn := strings.TrimSpace(params["filename"])
	fn = strings.ReplaceAll(fn, "\\", "/")
	fn = filepath.Base(fn)
	if fn == "." || fn == "/" {
		return ""
	}
	return fn
}

// SafeJoin joins name onto dir and refuses results that escape dir.
func SafeJoin(dir, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("empty file name")
	}

	baseAbs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	joinedAbs, err := filepath.Abs(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}

	sep := string(os.PathSeparator)
	if !strings.HasPrefix(joinedAbs, baseAbs+sep) {
		return "", errors.New("path traversal detected")
	}
	return joinedAbs, nil
}

func NewRequestID() string {
	return uuid.NewString()
}
