package driver

import (
	"context"
	"database/sql/driver"

	"github.com/tuannm99/csvsql/internal/engine"
)

// Conn implements driver.Conn and driver.ConnPrepareContext.
type Conn struct {
	db *engine.Database
}

func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *Conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, err := c.db.Prepare(query)
	if err != nil {
		return nil, err
	}
	return &Stmt{st: st}, nil
}

func (c *Conn) Close() error {
	return c.db.Close()
}

// Begin always fails: every statement applies directly to the table files.
func (c *Conn) Begin() (driver.Tx, error) {
	return nil, ErrNoTransactions
}

func (c *Conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	return nil, ErrNoTransactions
}

var (
	_ driver.Conn               = &Conn{}
	_ driver.ConnPrepareContext = &Conn{}
	_ driver.ConnBeginTx        = &Conn{}
)
