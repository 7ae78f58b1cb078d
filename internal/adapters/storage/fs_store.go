package storage

import (
	"context"
	"io"
	"os"
	"path"
	"strings"

	customErrors "github.com/mohamedaliSwe/mimi-style/internal/domain/store/errors"
	"github.com/spf13/afero"
)

// FSStore writes files under dir on an afero filesystem.
type FSStore struct {
	fs  afero.Fs
	dir string
}

func NewFSStore(fs afero.Fs, dir string) *FSStore {
	return &FSStore{fs: fs, dir: path.Clean(dir)}
}

func NewOSStore(dir string) *FSStore {
	return NewFSStore(afero.NewOsFs(), dir)
}

func (s *FSStore) Save(ctx context.Context, name string, r io.Reader, allowed []string) (string, error) {
	stored, err := storedName(name, allowed)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", customErrors.WrapInternal(err, "create upload dir")
	}
	p := path.Join(s.dir, stored)
	f, err := s.fs.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", customErrors.WrapInternal(err, "create file")
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(p)
		return "", customErrors.WrapInternal(err, "write file")
	}
	if err := f.Close(); err != nil {
		return "", customErrors.WrapInternal(err, "close file")
	}
	return p, nil
}

// Delete removes a file previously returned by Save. Missing files and
// paths outside the upload dir are ignored.
func (s *FSStore) Delete(_ context.Context, p string) error {
	p = path.Clean(p)
	if !s.within(p) {
		return nil
	}
	if err := s.fs.Remove(p); err != nil && !os.IsNotExist(err) {
		return customErrors.WrapInternal(err, "delete file")
	}
	return nil
}

// within reports whether the cleaned path p names an entry below s.dir.
func (s *FSStore) within(p string) bool {
	switch s.dir {
	case ".":
		return !path.IsAbs(p) && p != "." && p != ".." && !strings.HasPrefix(p, "../")
	case "/":
		return p != "/" && path.IsAbs(p)
	}
	return strings.HasPrefix(p, s.dir+"/")
}
