package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

var emptyArray = []byte("[]\n")

// collection stores a whole slice as one indented JSON array. Writes go to a
// temp file in the same directory and are renamed over the target, so a crash
// never leaves a half-written file behind.
type collection[T any] struct {
	path string
}

func (c collection[T]) load(ctx context.Context) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", c.path, err)
	}
	items := []*T{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.path, err)
	}
	return items, nil
}

func (c collection[T]) save(ctx context.Context, items []*T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if items == nil {
		items = []*T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.path, err)
	}
	return writeAtomic(c.path, append(data, '\n'))
}

// ensure creates the file as an empty array when it is missing, and resets it
// when it is not a JSON array.
func (c collection[T]) ensure(logger *logrus.Entry) error {
	raw, err := os.ReadFile(c.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.WithField("path", c.path).Info("Creating empty data file")
		return writeAtomic(c.path, emptyArray)
	case err != nil:
		return fmt.Errorf("read %s: %w", c.path, err)
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		logger.WithError(err).WithField("path", c.path).Warn("Data file is corrupt, resetting to empty")
		return writeAtomic(c.path, emptyArray)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
