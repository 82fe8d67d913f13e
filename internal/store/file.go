package store

import (
	"bytes"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjack-trainer/internal/fileutil"
)

var _ Store = (*FileStore)(nil)

// FileStore is a MemoryStore that writes the document to a TOML file after
// every change.
type FileStore struct {
	*MemoryStore
	path   string
	logger *log.Logger
}

// OpenFileStore loads path. A missing file starts a new player; a file that
// does not parse is logged and replaced by defaults on the next save. Fields
// absent from the file keep their default values.
func OpenFileStore(path string, clock quartz.Clock, logger *log.Logger) (*FileStore, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	fs := &FileStore{path: path, logger: logger.WithPrefix("store")}

	data := DefaultData()
	raw, ok, err := fileutil.ReadFileIfExists(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if ok {
		loaded := DefaultData()
		if _, err := toml.Decode(string(raw), &loaded); err != nil {
			fs.logger.Warn("Save file is corrupt, starting from defaults", "path", path, "error", err)
		} else {
			data = loaded
		}
	} else {
		fs.logger.Debug("No save file, starting from defaults", "path", path)
	}

	fs.MemoryStore = newMemoryStore(data, clock, fs.save)
	return fs, nil
}

// Path returns the save file location
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) save(data Data) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(data); err != nil {
		return fmt.Errorf("failed to encode save file: %w", err)
	}
	if err := fileutil.EnsureParentDir(f.path); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(f.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}

	f.logger.Debug("Saved", "path", f.path, "balance", data.Currency.Balance)
	return nil
}
