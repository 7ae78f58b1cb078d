package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	customErrors "github.com/mohamedaliSwe/mimi-style/internal/domain/store/errors"
)

var ImageExtensions = []string{"png", "jpg", "jpeg", "gif"}

var errRejected = customErrors.NewFileRejected("Invalid file or file type not allowed")

// FileStore keeps uploaded files. Save returns the path the file can later
// be deleted by.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader, allowed []string) (string, error)
	Delete(ctx context.Context, path string) error
}

// storedName sanitizes name, checks its extension against allowed and
// prefixes a uuid so uploads never overwrite each other.
func storedName(name string, allowed []string) (string, error) {
	clean := sanitize(name)
	if clean == "" || !allowedExt(clean, allowed) {
		return "", errRejected
	}
	return uuid.NewString() + "_" + clean, nil
}

func sanitize(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return strings.TrimLeft(b.String(), "._")
}

func allowedExt(name string, allowed []string) bool {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return false
	}
	ext := strings.ToLower(name[i+1:])
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
