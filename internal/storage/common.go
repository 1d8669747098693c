package storage

import (
	"errors"
	"path/filepath"
)

const (
	FileMode0644 = 0o644 // rw-r--r--
	FileMode0755 = 0o755 // rwxr-xr-x
)

const (
	TableExt = ".csv"
	IDDir    = "id"
)

var (
	ErrMappingClosed = errors.New("storage: mapping is closed")
	ErrOutOfRange    = errors.New("storage: offset out of mapping range")
)

// TablePath is <dir>/<table>.csv.
func TablePath(dir, table string) string {
	return filepath.Join(dir, table+TableExt)
}

// IDPath is the auto-increment counter file <dir>/id/<table>__<column>.txt.
func IDPath(dir, table, column string) string {
	return filepath.Join(dir, IDDir, table+"__"+column+".txt")
}
