package storage

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/tuannm99/csvsql/internal/record"
	"github.com/tuannm99/csvsql/internal/sqlerr"
)

// RowFunc transforms one data row during Rewrite. keep=false drops it.
type RowFunc func(row record.Row) (out record.Row, keep bool, err error)

// Rewrite streams the table at path into a temp file in the same directory,
// passing every data row through fn, then renames the temp file over path.
// The header line is copied unchanged. It returns the number of rows kept.
func Rewrite(f *Files, path string, maxCells int, fn RowFunc) (int64, error) {
	src, err := f.Open(path)
	if err != nil {
		return 0, err
	}
	defer closeQuietly(src)

	tmp, err := afero.TempFile(f.Fs, filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, sqlerr.Wrap(sqlerr.KindFileIO, err, "create temp file for %s", path)
	}
	tmpName := tmp.Name()

	fail := func(err error) (int64, error) {
		closeQuietly(tmp)
		if rmErr := f.Fs.Remove(tmpName); rmErr != nil {
			slog.Warn("storage: remove temp file", "path", tmpName, "err", rmErr)
		}
		return 0, err
	}

	r := bufio.NewReader(src)
	w := bufio.NewWriter(tmp)

	header, err := record.ParseLine(r, maxCells)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fail(sqlerr.New(sqlerr.KindExec, "table file %s has no header", path))
		}
		return fail(err)
	}
	if _, err := w.Write(record.AppendLine(nil, header)); err != nil {
		return fail(sqlerr.Wrap(sqlerr.KindFileIO, err, "write temp file"))
	}

	var kept int64
	var line []byte
	for {
		row, err := record.ParseLine(r, maxCells)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(err)
		}
		out, keep, err := fn(row)
		if err != nil {
			return fail(err)
		}
		if !keep {
			continue
		}
		line = record.AppendLine(line[:0], out)
		if _, err := w.Write(line); err != nil {
			return fail(sqlerr.Wrap(sqlerr.KindFileIO, err, "write temp file"))
		}
		kept++
	}

	if err := w.Flush(); err != nil {
		return fail(sqlerr.Wrap(sqlerr.KindFileIO, err, "flush temp file"))
	}
	if err := tmp.Close(); err != nil {
		return fail(sqlerr.Wrap(sqlerr.KindFileIO, err, "close temp file"))
	}
	closeQuietly(src)

	if err := f.Rename(tmpName, path); err != nil {
		if rmErr := f.Fs.Remove(tmpName); rmErr != nil {
			slog.Warn("storage: remove temp file", "path", tmpName, "err", rmErr)
		}
		return 0, err
	}
	return kept, nil
}
