package record

import (
	"errors"
	"io"
	"strings"

	"github.com/tuannm99/csvsql/internal/sqlerr"
)

// DefaultMaxCells bounds the number of cells ParseLine accepts per line.
const DefaultMaxCells = 128

const sep = ','

// lexer states
const (
	stFieldStart = 0
	stQuoted     = 10
	stAfterQuote = 20
	stUnquoted   = 30
)

// ParseLine reads one CSV record from r. It returns io.EOF when r is
// exhausted before any byte is read.
//
// Quoted cells may contain separators and line breaks, a doubled quote inside
// a quoted cell is a literal quote. Bytes after a closing quote are dropped up
// to the next separator. An unterminated quote runs to the end of input.
func ParseLine(r io.ByteScanner, maxCells int) (Row, error) {
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}

	var (
		row     Row
		buf     strings.Builder
		anyRead bool
		m       = stFieldStart
	)

	store := func() error {
		if !anyRead {
			return nil
		}
		if len(row) >= maxCells {
			return sqlerr.New(sqlerr.KindBufOverflow, "csv line columns overflow")
		}
		row = append(row, buf.String())
		buf.Reset()
		anyRead = false
		return nil
	}

	finish := func() (Row, error) {
		if err := store(); err != nil {
			return nil, err
		}
		return row, nil
	}

	// crlf consumes an optional '\n' after '\r'.
	crlf := func() error {
		c, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if c != '\n' {
			return r.UnreadByte()
		}
		return nil
	}

	for {
		c, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, sqlerr.Wrap(sqlerr.KindFileIO, err, "read csv line")
		}

		switch m {
		case stFieldStart:
			anyRead = true
			switch c {
			case '"':
				m = stQuoted
			case sep:
				if err := store(); err != nil {
					return nil, err
				}
				anyRead = true
			case '\n':
				return finish()
			case '\r':
				if err := crlf(); err != nil {
					return nil, err
				}
				return finish()
			default:
				buf.WriteByte(c)
				m = stUnquoted
			}

		case stQuoted:
			if c != '"' {
				buf.WriteByte(c)
				continue
			}
			next, err := r.ReadByte()
			if err == nil && next == '"' {
				buf.WriteByte('"')
				continue
			}
			if err == nil {
				if err := r.UnreadByte(); err != nil {
					return nil, err
				}
			}
			m = stAfterQuote

		case stAfterQuote:
			switch c {
			case sep:
				if err := store(); err != nil {
					return nil, err
				}
				anyRead = true
				m = stFieldStart
			case '\n':
				return finish()
			case '\r':
				if err := crlf(); err != nil {
					return nil, err
				}
				return finish()
			}

		case stUnquoted:
			switch c {
			case '"':
				next, err := r.ReadByte()
				if err == nil && next == '"' {
					buf.WriteByte('"')
					continue
				}
				if err == nil {
					if err := r.UnreadByte(); err != nil {
						return nil, err
					}
				}
				buf.Reset()
				m = stQuoted
			case sep:
				if err := store(); err != nil {
					return nil, err
				}
				anyRead = true
				m = stFieldStart
			case '\n':
				return finish()
			case '\r':
				if err := crlf(); err != nil {
					return nil, err
				}
				return finish()
			default:
				buf.WriteByte(c)
			}
		}
	}

	if !anyRead && len(row) == 0 {
		return nil, io.EOF
	}
	return finish()
}

// ParseString parses the first record of s.
func ParseString(s string, maxCells int) (Row, error) {
	row, err := ParseLine(strings.NewReader(s), maxCells)
	if errors.Is(err, io.EOF) {
		return Row{}, nil
	}
	return row, err
}

// NeedsQuote reports whether cell must be quoted to survive a round trip.
func NeedsQuote(cell string) bool {
	return strings.ContainsAny(cell, ",\"\r\n")
}

// AppendCell appends one encoded cell to dst.
func AppendCell(dst []byte, cell string) []byte {
	if !NeedsQuote(cell) {
		return append(dst, cell...)
	}
	dst = append(dst, '"')
	for i := 0; i < len(cell); i++ {
		if cell[i] == '"' {
			dst = append(dst, '"')
		}
		dst = append(dst, cell[i])
	}
	return append(dst, '"')
}

// AppendLine appends row as a newline terminated CSV record.
func AppendLine(dst []byte, row Row) []byte {
	for i, cell := range row {
		if i > 0 {
			dst = append(dst, sep)
		}
		dst = AppendCell(dst, cell)
	}
	return append(dst, '\n')
}

// FormatLine is AppendLine into a fresh string.
func FormatLine(row Row) string {
	return string(AppendLine(nil, row))
}
