package level

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Store persists levels by name.
type Store interface {
	Save(ctx context.Context, name string, l Level) error
	Load(ctx context.Context, name string) (Level, error)
}

const fileExt = ".json"

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// FileStore keeps one JSON file per level under Dir.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore { return &FileStore{Dir: dir} }

func (s *FileStore) path(name string) string {
	return filepath.Join(s.Dir, name+fileExt)
}

func (s *FileStore) Save(ctx context.Context, name string, l Level) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, l); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create level dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("save level %q: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(buf.Bytes()); err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("save level %q: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("save level %q: %w", name, err)
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context, name string) (Level, error) {
	if err := checkName(name); err != nil {
		return Level{}, err
	}
	if err := ctx.Err(); err != nil {
		return Level{}, err
	}

	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return Level{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return Level{}, fmt.Errorf("load level %q: %w", name, err)
	}
	return Decode(bytes.NewReader(data))
}
