package executor

import (
	"errors"
	"io"

	"github.com/tuannm99/csvsql/internal/record"
	"github.com/tuannm99/csvsql/internal/sqlerr"
	"github.com/tuannm99/csvsql/internal/storage"
)

func (m *Model) loadHeader() error {
	if !m.Files.Exists(m.path) {
		return sqlerr.New(sqlerr.KindExec, "no such table: %s", m.table)
	}
	h, err := storage.ReadHeader(m.Files, m.path, m.Limits.MaxRowCells)
	if err != nil {
		return err
	}
	m.header = h
	return nil
}

// openScan maps the table and positions the cursor on the first data row.
// loopIP is the instruction every row iteration restarts from.
func (m *Model) openScan(loopIP int) error {
	mp, err := storage.OpenMapping(m.Files, m.path)
	if err != nil {
		return err
	}
	m.mapping = mp

	start, err := storage.HeaderEnd(mp.Bytes(), m.Limits.MaxRowCells)
	if err != nil {
		return err
	}
	m.cursor = start
	m.scanning = true
	m.loopIP = loopIP
	m.needFetch = true
	m.eof = false
	return nil
}

// fetchRow advances to the next live row when the previous one has been
// consumed. Tombstones and blank lines are skipped; at the end m.row is nil
// and m.eof is set.
func (m *Model) fetchRow() error {
	if !m.scanning {
		return sqlerr.New(sqlerr.KindExec, "no open table scan")
	}
	if !m.needFetch {
		return nil
	}
	m.needFetch = false
	for {
		row, next, err := m.mapping.ReadRow(m.cursor, m.Limits.MaxRowCells)
		if errors.Is(err, io.EOF) {
			m.row = nil
			m.eof = true
			return nil
		}
		if err != nil {
			return err
		}
		m.rowStart, m.cursor = m.cursor, next
		if row.Deleted() || (len(row) == 1 && row[0] == "") {
			continue
		}
		m.row = row
		return nil
	}
}

// nextIteration consumes the current row and jumps back to the loop head.
func (m *Model) nextIteration() action {
	m.needFetch = true
	m.ip = m.loopIP
	return actJump
}

func (m *Model) closeScan() error {
	m.scanning = false
	m.row = nil
	m.selected = nil
	if m.mapping == nil {
		return nil
	}
	err := m.mapping.Close()
	m.mapping = nil
	return err
}

// tombstone flips the mode flag of the current row to "1".
func (m *Model) tombstone() error {
	data := m.mapping.Bytes()
	if m.rowStart >= len(data) || data[m.rowStart] != record.FlagLive[0] {
		return sqlerr.New(sqlerr.KindExec, "corrupted mode flag at offset %d of %s", m.rowStart, m.path)
	}
	return m.mapping.SetByte(m.rowStart, record.FlagDeleted[0])
}

func (m *Model) startSelect() error {
	if m.star {
		m.projection = m.header.UserColumns()
	} else {
		m.projection = make([]record.ColumnType, 0, len(m.names))
		for _, name := range m.names {
			col, ok := m.header.FindUser(name)
			if !ok {
				return sqlerr.New(sqlerr.KindExec, "invalid column name. %q is not in header types", name)
			}
			m.projection = append(m.projection, col)
		}
	}
	m.columns = m.projection
	return m.openScan(m.ip + 1)
}

func (m *Model) selectEnd() (action, error) {
	if err := m.fetchRow(); err != nil {
		return actNext, err
	}
	match, err := m.takeMatch()
	if err != nil {
		return actNext, err
	}
	if m.eof {
		return actNext, m.closeScan()
	}
	if !match {
		return m.nextIteration(), nil
	}

	out := make([]string, len(m.projection))
	for i, col := range m.projection {
		out[i] = cellAt(m.row, col.Index)
	}
	m.selected = out
	m.nextIteration()
	return actYield, nil
}

func (m *Model) deleteEnd() (action, error) {
	if err := m.fetchRow(); err != nil {
		return actNext, err
	}
	match, err := m.takeMatch()
	if err != nil {
		return actNext, err
	}
	if m.eof {
		return actNext, m.closeScan()
	}
	if match {
		if err := m.tombstone(); err != nil {
			return actNext, err
		}
		m.changes++
	}
	return m.nextIteration(), nil
}

func (m *Model) updateEnd() (action, error) {
	if !m.scanning {
		return actNext, m.rewriteAll()
	}

	if err := m.fetchRow(); err != nil {
		return actNext, err
	}
	match, err := m.takeMatch()
	if err != nil {
		return actNext, err
	}
	if m.eof {
		if err := m.closeScan(); err != nil {
			return actNext, err
		}
		if err := storage.AppendRows(m.Files, m.path, m.pending); err != nil {
			return actNext, err
		}
		m.pending = nil
		return actNext, nil
	}
	if match {
		if err := m.tombstone(); err != nil {
			return actNext, err
		}
		m.pending = append(m.pending, m.applySets(m.row))
		m.changes++
	}
	return m.nextIteration(), nil
}

// rewriteAll applies SET to every live row and compacts tombstones away.
func (m *Model) rewriteAll() error {
	n, err := storage.Rewrite(m.Files, m.path, m.Limits.MaxRowCells, func(row record.Row) (record.Row, bool, error) {
		if row.Deleted() || (len(row) == 1 && row[0] == "") {
			return nil, false, nil
		}
		return m.applySets(row), true, nil
	})
	if err != nil {
		return err
	}
	m.changes += n
	return nil
}

// applySets returns a live copy of row, padded to the header width, with the
// SET assignments applied.
func (m *Model) applySets(row record.Row) record.Row {
	out := make(record.Row, max(len(row), m.header.Len()))
	copy(out, row)
	out[0] = record.FlagLive
	for _, kv := range m.sets {
		col, _ := m.header.Find(kv.Key)
		out[col.Index] = kv.Value.Cell()
	}
	return out
}
