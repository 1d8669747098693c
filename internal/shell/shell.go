// Package shell is the interactive front end shared by the local and remote
// command line tools.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

const (
	DefaultPrompt = "csvsql> "
	contPrompt    = "...> "
)

const helpText = `meta commands:
  \q | quit | exit       quit
  \tables                list tables
  \explain <sql>         show the compiled program
  \history               print history
  \help                  show help

sql:
  end statements with ';'
  multiline is supported (the shell waits until ';')`

type Shell struct {
	backend Backend
	out     io.Writer
	hist    *History
	buf     strings.Builder
}

// New returns a shell writing to out. hist may be nil.
func New(b Backend, out io.Writer, hist *History) *Shell {
	if hist == nil {
		hist = NewHistory("")
	}
	return &Shell{backend: b, out: out, hist: hist}
}

// Pending reports whether an incomplete statement is buffered.
func (s *Shell) Pending() bool { return s.buf.Len() > 0 }

// Cancel drops the buffered statement.
func (s *Shell) Cancel() { s.buf.Reset() }

// Feed handles one input line. Complete statements are executed and their
// result printed. It returns true when the user asked to quit.
func (s *Shell) Feed(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if isMetaCommand(line) {
		return s.meta(ctx, line)
	}

	if s.buf.Len() > 0 {
		s.buf.WriteByte('\n')
	}
	s.buf.WriteString(line)
	if !statementComplete(s.buf.String()) {
		return false
	}

	stmt := strings.TrimSpace(s.buf.String())
	s.buf.Reset()
	_ = s.hist.Append(stmt)
	_ = s.Exec(ctx, stmt)
	return false
}

// Exec runs stmt and prints its result or error.
func (s *Shell) Exec(ctx context.Context, stmt string) error {
	res, err := s.backend.Exec(ctx, stmt)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return err
	}
	PrintResult(s.out, res)
	return nil
}

func (s *Shell) meta(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case `\q`, "quit", "exit":
		return true
	case `\help`:
		fmt.Fprintln(s.out, helpText)
	case `\history`:
		s.hist.Print(s.out, 50)
	case `\tables`:
		tables, err := s.backend.Tables(ctx)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			break
		}
		for _, t := range tables {
			fmt.Fprintln(s.out, t)
		}
	case `\explain`:
		ex, ok := s.backend.(Explainer)
		if !ok {
			fmt.Fprintln(s.out, "explain is not supported by this backend")
			break
		}
		if arg == "" {
			fmt.Fprintln(s.out, `usage: \explain <sql>`)
			break
		}
		listing, err := ex.Explain(ctx, arg)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			break
		}
		fmt.Fprint(s.out, listing)
		if !strings.HasSuffix(listing, "\n") {
			fmt.Fprintln(s.out)
		}
	default:
		fmt.Fprintf(s.out, "unknown command: %s\n", line)
	}
	return false
}

// Run reads lines with readline until EOF or a quit command.
func (s *Shell) Run(ctx context.Context, prompt string) error {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          s.out,
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer func() { _ = rl.Close() }()

	// so the up arrow works right away
	for _, line := range s.hist.Lines() {
		_ = rl.SaveHistory(line)
	}

	fmt.Fprintln(s.out, `type \help for help`)

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if s.Pending() {
				s.Cancel()
				rl.SetPrompt(prompt)
				continue
			}
			fmt.Fprintln(s.out, "^C")
			continue
		}
		if err != nil {
			// EOF
			fmt.Fprintln(s.out)
			return nil
		}

		if s.Feed(ctx, line) {
			return nil
		}
		if s.Pending() {
			rl.SetPrompt(contPrompt)
			continue
		}
		rl.SetPrompt(prompt)
		if strings.TrimSpace(line) != "" && !isMetaCommand(line) {
			_ = rl.SaveHistory(s.lastHistory())
		}
	}
}

func (s *Shell) lastHistory() string {
	lines := s.hist.Lines()
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

// statementComplete reports whether buf holds a ';' outside quotes.
func statementComplete(buf string) bool {
	var quote byte
	escaped := false

	for i := 0; i < len(buf); i++ {
		c := buf[i]
		if escaped {
			escaped = false
			continue
		}
		if quote != 0 {
			switch c {
			case '\\':
				escaped = true
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case ';':
			return true
		}
	}
	return false
}

func isMetaCommand(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, `\`) || line == "quit" || line == "exit"
}
