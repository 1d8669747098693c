package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/tuannm99/csvsql/internal/sqlerr"
)

// Files is the directory and file collaborator the engine runs against.
// Production uses the OS filesystem, tests may swap in afero.NewMemMapFs.
type Files struct {
	Fs afero.Fs
}

func NewFiles(fs afero.Fs) *Files {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Files{Fs: fs}
}

// OS returns Files over the real filesystem.
func OS() *Files { return NewFiles(afero.NewOsFs()) }

func (f *Files) Exists(path string) bool {
	ok, err := afero.Exists(f.Fs, path)
	return err == nil && ok
}

func (f *Files) IsDir(path string) bool {
	ok, err := afero.IsDir(f.Fs, path)
	return err == nil && ok
}

func (f *Files) MkdirAll(path string) error {
	return sqlerr.Wrap(sqlerr.KindFileIO, f.Fs.MkdirAll(path, FileMode0755), "mkdir %s", path)
}

// Touch creates an empty file when path does not exist yet.
func (f *Files) Touch(path string) error {
	fh, err := f.Fs.OpenFile(path, os.O_CREATE|os.O_WRONLY, FileMode0644)
	if err != nil {
		return sqlerr.Wrap(sqlerr.KindFileIO, err, "touch %s", path)
	}
	return sqlerr.Wrap(sqlerr.KindFileIO, fh.Close(), "touch %s", path)
}

func (f *Files) Rename(from, to string) error {
	return sqlerr.Wrap(sqlerr.KindFileIO, f.Fs.Rename(from, to), "rename %s to %s", from, to)
}

func (f *Files) Remove(path string) error {
	return sqlerr.Wrap(sqlerr.KindFileIO, f.Fs.Remove(path), "remove %s", path)
}

func (f *Files) ReadFile(path string) ([]byte, error) {
	b, err := afero.ReadFile(f.Fs, path)
	if err != nil {
		return nil, sqlerr.Wrap(sqlerr.KindFileIO, err, "read %s", path)
	}
	return b, nil
}

// WriteFile replaces the content of path.
func (f *Files) WriteFile(path string, data []byte) error {
	return sqlerr.Wrap(sqlerr.KindFileIO, afero.WriteFile(f.Fs, path, data, FileMode0644), "write %s", path)
}

// CreateExclusive creates path with data and fails with os.ErrExist when it
// is already there.
func (f *Files) CreateExclusive(path string, data []byte) error {
	fh, err := f.Fs.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, FileMode0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return err
		}
		return sqlerr.Wrap(sqlerr.KindFileIO, err, "create %s", path)
	}
	if _, err := fh.Write(data); err != nil {
		_ = fh.Close()
		return sqlerr.Wrap(sqlerr.KindFileIO, err, "write %s", path)
	}
	return sqlerr.Wrap(sqlerr.KindFileIO, fh.Close(), "close %s", path)
}

// AppendFile writes data at the end of an existing file.
func (f *Files) AppendFile(path string, data []byte) error {
	fh, err := f.Fs.OpenFile(path, os.O_APPEND|os.O_WRONLY, FileMode0644)
	if err != nil {
		return sqlerr.Wrap(sqlerr.KindFileIO, err, "open %s for append", path)
	}
	if _, err := fh.Write(data); err != nil {
		_ = fh.Close()
		return sqlerr.Wrap(sqlerr.KindFileIO, err, "append %s", path)
	}
	return sqlerr.Wrap(sqlerr.KindFileIO, fh.Close(), "close %s", path)
}

// LastByte returns the final byte of path, ok=false for an empty file.
func (f *Files) LastByte(path string) (byte, bool, error) {
	fh, err := f.Open(path)
	if err != nil {
		return 0, false, err
	}
	defer closeQuietly(fh)

	fi, err := fh.Stat()
	if err != nil {
		return 0, false, sqlerr.Wrap(sqlerr.KindFileIO, err, "stat %s", path)
	}
	if fi.Size() == 0 {
		return 0, false, nil
	}
	var b [1]byte
	if _, err := fh.ReadAt(b[:], fi.Size()-1); err != nil {
		return 0, false, sqlerr.Wrap(sqlerr.KindFileIO, err, "read %s", path)
	}
	return b[0], true, nil
}

func (f *Files) Open(path string) (afero.File, error) {
	fh, err := f.Fs.Open(path)
	if err != nil {
		return nil, sqlerr.Wrap(sqlerr.KindFileIO, err, "open %s", path)
	}
	return fh, nil
}

// ListTables returns the table names in dir (every *.csv file), sorted.
func (f *Files) ListTables(dir string) ([]string, error) {
	infos, err := afero.ReadDir(f.Fs, dir)
	if err != nil {
		return nil, sqlerr.Wrap(sqlerr.KindFileIO, err, "read dir %s", dir)
	}
	var names []string
	for _, fi := range infos {
		if fi.IsDir() || filepath.Ext(fi.Name()) != TableExt {
			continue
		}
		names = append(names, strings.TrimSuffix(fi.Name(), TableExt))
	}
	sort.Strings(names)
	return names, nil
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}
