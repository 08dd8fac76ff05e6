// Package jsonfile reads and writes whole JSON documents on disk.
//
// Documents are written pretty-printed with a two-space indent. A write goes
// to a temporary file in the target directory which is then renamed over the
// target, so readers see either the old or the new document, never a mix.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// ErrCorrupt is returned when a file exists but does not contain valid JSON for the target value.
var ErrCorrupt = errors.New("corrupt json file")

// Read decodes the JSON document at path into v.
// A missing file is reported with an error wrapping [os.ErrNotExist].
func Read(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	if err = json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCorrupt, path, err)
	}

	return nil
}

// Exists reports whether a regular file is present at path.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("error checking %s: %w", path, err)
	}

	return !info.IsDir(), nil
}

// Write encodes v and replaces the file at path with it, creating parent directories as needed.
func Write(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("error creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// Only left behind when something below failed.
		_ = os.Remove(tmpName)
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("error writing %s: %w", tmpName, err)
	}
	if err = tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("error setting mode on %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("error replacing %s: %w", path, err)
	}

	return nil
}
