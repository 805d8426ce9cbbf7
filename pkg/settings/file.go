package settings

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileRegion backs the settings region with a small file, standing in for
// the EEPROM of the original hardware.
type FileRegion struct {
	file *os.File
}

// OpenFileRegion opens (creating if needed) the settings file. The parent
// directory is created as well, matching how the daemon is usually pointed
// at a path under /var/lib before that directory exists.
func OpenFileRegion(path string) (*FileRegion, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("settings: create directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("settings: open %s: %w", path, err)
	}
	return &FileRegion{file: f}, nil
}

// ReadAt reads from the underlying file.
func (r *FileRegion) ReadAt(p []byte, off int64) (int, error) {
	return r.file.ReadAt(p, off)
}

// WriteAt writes to the underlying file.
func (r *FileRegion) WriteAt(p []byte, off int64) (int, error) {
	return r.file.WriteAt(p, off)
}

// Close closes the underlying file.
func (r *FileRegion) Close() error {
	return r.file.Close()
}
