package srcmap

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Ext is the conventional suffix of a sidecar written next to merged output.
const Ext = ".map"

// ErrSchema reports a sidecar written by an incompatible version.
var ErrSchema = errors.New("unsupported source map schema")

// Encode writes m as msgpack.
func Encode(w io.Writer, m *Map) error {
	return msgpack.NewEncoder(w).Encode(m)
}

// Decode reads a msgpack map and validates it.
func Decode(r io.Reader) (*Map, error) {
	var m Map
	if err := msgpack.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode source map: %w", err)
	}
	if m.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrSchema, m.Schema, SchemaVersion)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// WriteFile stores m at path, replacing any previous file atomically.
func WriteFile(path string, m *Map) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*.map")
	if err != nil {
		return err
	}
	defer func() {
		// после успешного Rename временного файла уже нет
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err = Encode(f, m); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), path)
}

// ReadFile loads a sidecar written by WriteFile.
func ReadFile(path string) (*Map, error) {
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return Decode(f)
}

// SidecarPath returns the map path for merged output written to out.
func SidecarPath(out string) string {
	return out + Ext
}
