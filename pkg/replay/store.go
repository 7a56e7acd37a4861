package replay

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Ext is the file extension of stored replays.
const Ext = ".replay"

// Errors returned by recorders and stores.
var (
	// ErrNotFound is returned when a replay does not exist.
	ErrNotFound = errors.New("replay: not found")

	// ErrInvalidName is returned for names that are empty or contain a path.
	ErrInvalidName = errors.New("replay: invalid name")

	// ErrEmpty is returned when saving a recording without frames.
	ErrEmpty = errors.New("replay: nothing recorded")

	// ErrFull is returned when a recorder reached its size limit.
	ErrFull = errors.New("replay: recorder full")

	// ErrBadFrame is returned when a recorded frame is not one State frame.
	ErrBadFrame = errors.New("replay: not a state frame")

	// ErrTickGap is returned when frames are recorded out of sequence.
	ErrTickGap = errors.New("replay: tick gap")
)

// Store is the interface for replay storage backends.
type Store interface {
	// Save stores data under name, replacing any previous replay.
	Save(ctx context.Context, name string, data []byte) error

	// Load returns the replay stored under name.
	Load(ctx context.Context, name string) ([]byte, error)

	// List returns the stored replay names in ascending order.
	List(ctx context.Context) ([]string, error)
}

// ValidateName checks that name can be used as a replay key.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return ErrInvalidName
	}
	return nil
}

// FileStore keeps replays as files in one directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes the replay atomically through a temp file.
func (s *FileStore) Save(ctx context.Context, name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Load reads a replay file.
func (s *FileStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// List returns the names of files with the replay extension.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
