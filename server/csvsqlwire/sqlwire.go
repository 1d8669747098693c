package csvsqlwire

import "github.com/tuannm99/csvsql/internal/sql/executor"

// Request operations. The zero value executes SQL.
const (
	OpExec    = ""
	OpExplain = "explain"
	OpTables  = "tables"
)

// ExecuteRequest is one request on a session. SQL is ignored by OpTables.
type ExecuteRequest struct {
	ID  uint64 `json:"id"`
	Op  string `json:"op,omitempty"`
	SQL string `json:"sql,omitempty"`
}

// ExecuteResponse answers the request with the same ID. Kind names the
// engine error kind (SYNTAX, EXEC, ...) when Error is set.
type ExecuteResponse struct {
	ID     uint64           `json:"id"`
	Result *executor.Result `json:"result,omitempty"`
	Plan   string           `json:"plan,omitempty"`
	Tables []string         `json:"tables,omitempty"`
	Error  string           `json:"error,omitempty"`
	Kind   string           `json:"kind,omitempty"`
}
