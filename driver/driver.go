// Package driver registers csvsql as a Go database/sql driver under the
// name "csvsql". The data source name is the database directory:
//
//	import _ "github.com/tuannm99/csvsql/driver"
//
//	db, err := sql.Open("csvsql", "test_db")
package driver

import (
	"database/sql"
	gosqldriver "database/sql/driver"
	"errors"

	"github.com/tuannm99/csvsql/internal/engine"
)

// DriverName is the name used to register the driver with database/sql.
const DriverName = "csvsql"

var ErrNoTransactions = errors.New("csvsql: transactions are not supported")

func init() {
	sql.Register(DriverName, &Driver{})
}

// Driver implements database/sql/driver.Driver.
type Driver struct{}

// Open opens a connection on the database directory name.
func (d *Driver) Open(name string) (gosqldriver.Conn, error) {
	db, err := engine.Open(name)
	if err != nil {
		return nil, err
	}
	return &Conn{db: db}, nil
}

var _ gosqldriver.Driver = &Driver{}
