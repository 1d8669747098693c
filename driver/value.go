package driver

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/spf13/cast"

	"github.com/tuannm99/csvsql/internal/engine"
)

// bindArgs binds positional arguments. Named arguments are rejected since
// the grammar only has '?'.
func bindArgs(st *engine.Stmt, args []driver.NamedValue) error {
	for _, a := range args {
		if a.Name != "" {
			return fmt.Errorf("csvsql: named parameter %q is not supported", a.Name)
		}
		if err := bindValue(st, a.Ordinal, a.Value); err != nil {
			return err
		}
	}
	return nil
}

func bindValue(st *engine.Stmt, idx int, v any) error {
	if vr, ok := v.(driver.Valuer); ok {
		dv, err := vr.Value()
		if err != nil {
			return fmt.Errorf("csvsql: argument %d: %w", idx, err)
		}
		v = dv
	}
	switch val := v.(type) {
	case nil:
		return st.BindText(idx, "")
	case int64:
		return st.BindInt(idx, val)
	case float64:
		return st.BindDouble(idx, val)
	case string:
		return st.BindText(idx, val)
	case []byte:
		return st.BindBytes(idx, val, engine.Transient)
	case time.Time:
		return st.BindText(idx, val.Format(time.RFC3339Nano))
	case bool, int, int8, int16, int32, uint, uint8, uint16, uint32, uint64:
		n, err := cast.ToInt64E(val)
		if err != nil {
			return fmt.Errorf("csvsql: argument %d: %w", idx, err)
		}
		return st.BindInt(idx, n)
	case float32:
		return st.BindDouble(idx, cast.ToFloat64(val))
	default:
		s, err := cast.ToStringE(val)
		if err != nil {
			return fmt.Errorf("csvsql: argument %d: unsupported type %T", idx, v)
		}
		return st.BindText(idx, s)
	}
}
