package storage

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"

	"github.com/tuannm99/csvsql/internal/record"
	"github.com/tuannm99/csvsql/internal/sqlerr"
)

// Mapping is a writable view of a whole table file. On OS backed files it is
// a shared memory map, so flag flips land in the file directly. Otherwise the
// file is read into memory and modified bytes are written back on Close.
type Mapping struct {
	path    string
	file    afero.File
	data    []byte
	mmapped bool
	dirty   map[int]byte
	closed  bool
}

type fder interface {
	Fd() uintptr
}

// OpenMapping maps the file at path read/write.
func OpenMapping(f *Files, path string) (*Mapping, error) {
	fh, err := f.Fs.OpenFile(path, os.O_RDWR, FileMode0644)
	if err != nil {
		return nil, sqlerr.Wrap(sqlerr.KindFileIO, err, "mmap open %s", path)
	}

	fi, err := fh.Stat()
	if err != nil {
		closeQuietly(fh)
		return nil, sqlerr.Wrap(sqlerr.KindFileIO, err, "mmap stat %s", path)
	}

	m := &Mapping{path: path, file: fh}
	size := fi.Size()
	if size == 0 {
		return m, nil
	}

	if osf, ok := fh.(fder); ok {
		data, err := unix.Mmap(int(osf.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err == nil {
			m.data = data
			m.mmapped = true
			return m, nil
		}
		slog.Warn("storage: mmap failed, reading file into memory", "path", path, "err", err)
	}

	data, err := io.ReadAll(fh)
	if err != nil {
		closeQuietly(fh)
		return nil, sqlerr.Wrap(sqlerr.KindFileIO, err, "read %s", path)
	}
	m.data = data
	m.dirty = make(map[int]byte)
	return m, nil
}

// Bytes exposes the mapped content. It is invalid after Close.
func (m *Mapping) Bytes() []byte { return m.data }

func (m *Mapping) Len() int { return len(m.data) }

// SetByte overwrites one byte at off.
func (m *Mapping) SetByte(off int, b byte) error {
	if m.closed {
		return ErrMappingClosed
	}
	if off < 0 || off >= len(m.data) {
		return ErrOutOfRange
	}
	m.data[off] = b
	if !m.mmapped {
		m.dirty[off] = b
	}
	return nil
}

// ReadRow parses the record starting at off and returns it with the offset of
// the next record. io.EOF is returned at the end of the mapping.
func (m *Mapping) ReadRow(off, maxCells int) (record.Row, int, error) {
	if m.closed {
		return nil, off, ErrMappingClosed
	}
	if off >= len(m.data) {
		return nil, off, io.EOF
	}
	c := newCursor(m.data, off)
	row, err := record.ParseLine(c, maxCells)
	if err != nil {
		return nil, off, err
	}
	return row, c.Offset(), nil
}

// Close releases the view. It is safe to call more than once.
func (m *Mapping) Close() error {
	if m == nil || m.closed {
		return nil
	}
	m.closed = true

	var firstErr error
	if m.mmapped {
		if err := unix.Munmap(m.data); err != nil {
			firstErr = sqlerr.Wrap(sqlerr.KindFileIO, err, "munmap %s", m.path)
		}
	} else {
		for off, b := range m.dirty {
			if _, err := m.file.WriteAt([]byte{b}, int64(off)); err != nil && firstErr == nil {
				firstErr = sqlerr.Wrap(sqlerr.KindFileIO, err, "write back %s", m.path)
			}
		}
	}
	m.data = nil
	m.dirty = nil

	if err := m.file.Close(); err != nil && firstErr == nil {
		firstErr = sqlerr.Wrap(sqlerr.KindFileIO, err, "close %s", m.path)
	}
	return firstErr
}

// cursor is an io.ByteScanner over a byte slice that tracks its offset.
type cursor struct {
	data []byte
	off  int
}

func newCursor(data []byte, off int) *cursor {
	return &cursor{data: data, off: off}
}

func (c *cursor) ReadByte() (byte, error) {
	if c.off >= len(c.data) {
		return 0, io.EOF
	}
	b := c.data[c.off]
	c.off++
	return b, nil
}

func (c *cursor) UnreadByte() error {
	if c.off == 0 {
		return io.ErrNoProgress
	}
	c.off--
	return nil
}

func (c *cursor) Offset() int { return c.off }
