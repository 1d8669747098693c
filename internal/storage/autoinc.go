package storage

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tuannm99/csvsql/internal/sqlerr"
)

// NextID hands out the next auto-increment value for table.column.
//
// The counter file holds the value the next call returns. A missing, empty or
// zero counter starts at 1.
func NextID(f *Files, dir, table, column string) (int64, error) {
	path := IDPath(dir, table, column)
	if err := f.MkdirAll(filepath.Dir(path)); err != nil {
		return 0, err
	}

	cur := int64(1)
	if f.Exists(path) {
		b, err := f.ReadFile(path)
		if err != nil {
			return 0, err
		}
		s := strings.TrimSpace(string(b))
		if s != "" {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return 0, sqlerr.Wrap(sqlerr.KindFileIO, err, "invalid id counter %s", path)
			}
			if n > 0 {
				cur = n
			}
		}
	}

	if err := f.WriteFile(path, []byte(strconv.FormatInt(cur+1, 10))); err != nil {
		return 0, err
	}
	return cur, nil
}
