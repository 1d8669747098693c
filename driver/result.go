package driver

import "errors"

// Result implements driver.Result.
type Result struct {
	rowsAffected int64
}

func (r Result) LastInsertId() (int64, error) {
	return 0, errors.New("csvsql: LastInsertId is not supported")
}

func (r Result) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}
