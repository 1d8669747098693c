package executor

import (
	"strconv"

	"github.com/tuannm99/csvsql/internal/record"
	"github.com/tuannm99/csvsql/internal/sqlerr"
	"github.com/tuannm99/csvsql/internal/storage"
)

// insert builds every row first and appends them in one write, so a bad
// tuple leaves the table untouched.
func (m *Model) insert() error {
	if len(m.tuples) == 0 {
		return sqlerr.New(sqlerr.KindExec, "no values to insert")
	}

	if m.star {
		return sqlerr.New(sqlerr.KindExec, "* is not allowed in INSERT column list")
	}

	var targets []record.ColumnType
	if len(m.names) == 0 {
		targets = m.header.UserColumns()
	} else {
		targets = make([]record.ColumnType, 0, len(m.names))
		seen := make(map[string]struct{}, len(m.names))
		for _, name := range m.names {
			col, ok := m.header.FindUser(name)
			if !ok {
				return sqlerr.New(sqlerr.KindExec, "invalid column name. %q is not in header types", name)
			}
			if _, dup := seen[name]; dup {
				return sqlerr.New(sqlerr.KindExec, "duplicate column name %s", name)
			}
			seen[name] = struct{}{}
			targets = append(targets, col)
		}
	}

	for i, tuple := range m.tuples {
		if len(tuple) != len(targets) {
			return sqlerr.New(sqlerr.KindExec, "values #%d has %d values but %d columns were named", i+1, len(tuple), len(targets))
		}
	}

	rows := make([]record.Row, 0, len(m.tuples))
	for _, tuple := range m.tuples {
		row := make(record.Row, m.header.Len())
		assigned := make([]bool, len(row))
		for i, col := range targets {
			row[col.Index] = tuple[i].Cell()
			assigned[col.Index] = true
		}
		for _, col := range m.header.Columns {
			if assigned[col.Index] {
				continue
			}
			cell, err := m.defaultCell(col)
			if err != nil {
				return err
			}
			row[col.Index] = cell
		}
		rows = append(rows, row)
	}

	if err := storage.AppendRows(m.Files, m.path, rows); err != nil {
		return err
	}
	m.changes += int64(len(rows))
	return nil
}

func (m *Model) defaultCell(col record.ColumnType) (string, error) {
	switch {
	case col.Index == 0:
		return record.FlagLive, nil
	case col.Integer && col.Autoincrement:
		id, err := storage.NextID(m.Files, m.Dir, m.table, col.Name)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(id, 10), nil
	case col.Integer:
		return "0", nil
	default:
		return "", nil
	}
}
