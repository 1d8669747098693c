package executor

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/tuannm99/csvsql/internal/record"
	"github.com/tuannm99/csvsql/internal/sqlerr"
	"github.com/tuannm99/csvsql/internal/storage"
)

func (m *Model) createTable() error {
	if m.Files.Exists(m.path) {
		if m.ifNotExists {
			return nil
		}
		return sqlerr.New(sqlerr.KindExec, "table %s already exists", m.table)
	}

	seen := make(map[string]struct{}, len(m.defs))
	for _, d := range m.defs {
		if d.Name == record.ModeColumn {
			return sqlerr.New(sqlerr.KindExec, "column name %s is reserved", d.Name)
		}
		if _, dup := seen[d.Name]; dup {
			return sqlerr.New(sqlerr.KindExec, "duplicate column name %s", d.Name)
		}
		seen[d.Name] = struct{}{}
	}

	if err := m.Files.MkdirAll(filepath.Join(m.Dir, storage.IDDir)); err != nil {
		return err
	}
	header := record.AppendLine(nil, record.NewHeaderRow(m.defs))
	if err := m.Files.CreateExclusive(m.path, header); err != nil {
		if errors.Is(err, os.ErrExist) {
			if m.ifNotExists {
				return nil
			}
			return sqlerr.New(sqlerr.KindExec, "table %s already exists", m.table)
		}
		return err
	}
	return nil
}

func (m *Model) showTablesBeg() error {
	tables, err := m.Files.ListTables(m.Dir)
	if err != nil {
		return err
	}
	m.tables = tables
	m.columns = []record.ColumnType{{Name: "name", Def: "TEXT", Text: true}}
	return nil
}

func (m *Model) showTablesEnd() (action, error) {
	if m.tableIdx >= len(m.tables) {
		m.tables = nil
		m.selected = nil
		return actNext, nil
	}
	m.selected = []string{m.tables[m.tableIdx]}
	m.tableIdx++
	return actYield, nil
}
