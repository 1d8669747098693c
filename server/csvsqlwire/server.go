package csvsqlwire

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/tuannm99/csvsql/internal/engine"
	"github.com/tuannm99/csvsql/internal/sql/executor"
	"github.com/tuannm99/csvsql/internal/sqlerr"
)

type ServerConfig struct {
	Addr          string
	Workdir       string
	Limits        executor.Limits
	StmtCacheSize int
}

// Run listens on sc.Addr and serves until ctx is cancelled.
func Run(ctx context.Context, sc ServerConfig) error {
	ln, err := net.Listen("tcp", sc.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return Serve(ctx, ln, sc)
}

// Serve accepts connections on ln until ctx is cancelled, then waits for
// open sessions to finish their current request. ln is closed on return.
func Serve(ctx context.Context, ln net.Listener, sc ServerConfig) error {
	defer func() { _ = ln.Close() }()

	// Fail fast on a bad workdir instead of on the first connection.
	probe, err := openSession(sc)
	if err != nil {
		return err
	}
	_ = probe.Close()

	log.Printf("csvsql tcp server listening on %s (workdir=%s)", ln.Addr(), sc.Workdir)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex
	conns := make(map[net.Conn]struct{})

	go func() {
		<-ctx.Done()
		_ = ln.Close()
		mu.Lock()
		for c := range conns {
			// unblock sessions waiting in ReadFrame
			_ = c.SetReadDeadline(time.Now())
		}
		mu.Unlock()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				wg.Wait()
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				wg.Wait()
				return nil
			}
			log.Printf("accept: %v", err)
			continue
		}

		mu.Lock()
		conns[conn] = struct{}{}
		mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				mu.Lock()
				delete(conns, conn)
				mu.Unlock()
			}()
			handleConn(ctx, conn, sc)
		}()
	}
}

func handleConn(ctx context.Context, conn net.Conn, sc ServerConfig) {
	defer func() { _ = conn.Close() }()

	// No global deadline; the client sets per-request deadlines.
	_ = conn.SetDeadline(time.Time{})

	db, err := openSession(sc)
	if err != nil {
		log.Printf("open session: %v", err)
		return
	}
	defer func() { _ = db.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var req ExecuteRequest
		if err := ReadFrame(conn, &req); err != nil {
			// Client closed, shutdown or bad frame.
			return
		}

		_ = WriteFrame(conn, dispatch(db, req))
	}
}

func dispatch(db *engine.Database, req ExecuteRequest) ExecuteResponse {
	resp := ExecuteResponse{ID: req.ID}
	var err error
	switch req.Op {
	case OpExec:
		resp.Result, err = db.ExecSQL(req.SQL)
	case OpTables:
		resp.Tables, err = db.Tables()
	case OpExplain:
		resp.Plan, err = explain(db, req.SQL)
	default:
		err = sqlerr.New(sqlerr.KindExec, "unknown request op %q", req.Op)
	}
	if err != nil {
		resp.Result = nil
		resp.Error = err.Error()
		resp.Kind = sqlerr.KindOf(err).String()
	}
	return resp
}

func explain(db *engine.Database, sql string) (string, error) {
	st, err := db.Prepare(sql)
	if err != nil {
		return "", err
	}
	defer func() { _ = st.Finalize() }()
	return st.Explain(), nil
}

// openSession returns a fresh handle per connection so program caches are
// not shared between clients.
func openSession(sc ServerConfig) (*engine.Database, error) {
	opts := []engine.Option{engine.WithLimits(sc.Limits)}
	if sc.StmtCacheSize > 0 {
		opts = append(opts, engine.WithStmtCache(sc.StmtCacheSize))
	}
	return engine.Open(sc.Workdir, opts...)
}
