package storage

import (
	"bufio"
	"errors"
	"io"

	"github.com/tuannm99/csvsql/internal/record"
	"github.com/tuannm99/csvsql/internal/sqlerr"
)

// ReadHeader parses the first line of the table file at path.
func ReadHeader(f *Files, path string, maxCells int) (*record.Header, error) {
	fh, err := f.Open(path)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(fh)

	row, err := record.ParseLine(bufio.NewReader(fh), maxCells)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, sqlerr.New(sqlerr.KindExec, "table file %s has no header", path)
		}
		return nil, err
	}
	return record.ParseHeader(row)
}

// AppendRows encodes rows and appends them to path in a single write.
func AppendRows(f *Files, path string, rows []record.Row) error {
	if len(rows) == 0 {
		return nil
	}
	var buf []byte
	last, ok, err := f.LastByte(path)
	if err != nil {
		return err
	}
	if ok && last != '\n' {
		buf = append(buf, '\n')
	}
	for _, r := range rows {
		buf = record.AppendLine(buf, r)
	}
	return f.AppendFile(path, buf)
}

// HeaderEnd returns the offset of the first data byte, right after the header
// record.
func HeaderEnd(data []byte, maxCells int) (int, error) {
	r := newCursor(data, 0)
	if _, err := record.ParseLine(r, maxCells); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, sqlerr.New(sqlerr.KindExec, "table file has no header")
		}
		return 0, err
	}
	return r.Offset(), nil
}
