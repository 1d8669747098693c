package shell

import (
	"context"

	"github.com/tuannm99/csvsql/internal/engine"
	"github.com/tuannm99/csvsql/internal/sql/executor"
	"github.com/tuannm99/csvsql/sqlclient"
)

// Backend runs the statements typed into the shell.
type Backend interface {
	Exec(ctx context.Context, sql string) (*executor.Result, error)
	Tables(ctx context.Context) ([]string, error)
}

// Explainer is implemented by backends that can show compiled programs.
type Explainer interface {
	Explain(ctx context.Context, sql string) (string, error)
}

// Local runs statements in-process against a database directory.
type Local struct {
	DB *engine.Database
}

func (l Local) Exec(_ context.Context, sql string) (*executor.Result, error) {
	return l.DB.ExecSQL(sql)
}

func (l Local) Tables(context.Context) ([]string, error) {
	return l.DB.Tables()
}

func (l Local) Explain(_ context.Context, sql string) (string, error) {
	st, err := l.DB.Prepare(sql)
	if err != nil {
		return "", err
	}
	defer func() { _ = st.Finalize() }()
	return st.Explain(), nil
}

// Remote forwards statements to a csvsql server.
type Remote struct {
	Client *sqlclient.Client
}

func (r Remote) Exec(ctx context.Context, sql string) (*executor.Result, error) {
	return r.Client.ExecContext(ctx, sql)
}

func (r Remote) Tables(ctx context.Context) ([]string, error) {
	return r.Client.Tables(ctx)
}

func (r Remote) Explain(ctx context.Context, sql string) (string, error) {
	return r.Client.Explain(ctx, sql)
}
