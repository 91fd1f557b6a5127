// Package repl is the interactive front end: it reads submissions, feeds them
// to a session and prints results.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/funvibe/snirk/internal/ast"
	"github.com/funvibe/snirk/internal/config"
	"github.com/funvibe/snirk/internal/diagnostics"
	"github.com/funvibe/snirk/internal/history"
	"github.com/funvibe/snirk/internal/lexer"
	"github.com/funvibe/snirk/internal/parser"
	"github.com/funvibe/snirk/internal/session"
	"github.com/funvibe/snirk/internal/symbols"
)

const banner = "snirk - type :help for commands, :quit to exit"

// REPL evaluates submissions against one session.
type REPL struct {
	sess   *session.Session
	cfg    *config.Config
	store  *history.Store
	out    io.Writer
	errOut io.Writer
	log    *slog.Logger
}

// New creates a REPL. store may be nil, in which case nothing is recorded.
func New(sess *session.Session, cfg *config.Config, store *history.Store, out, errOut io.Writer) *REPL {
	if cfg == nil {
		cfg = config.Default()
	}
	return &REPL{
		sess:   sess,
		cfg:    cfg,
		store:  store,
		out:    out,
		errOut: errOut,
		log:    slog.Default().With("session", sess.ID()),
	}
}

// Incomplete reports whether src stops in the middle of a statement. Only the
// lexer and parser run; the session is not touched.
func Incomplete(src string) bool {
	_, err := parser.Parse(lexer.NewTokenStream(lexer.New(src)), symbols.NewTable(), symbols.NewConstantPool())
	return parser.IsIncomplete(err)
}

// complete appends the bound name to a submission that ends in a declaration
// or assignment, so "let x = 5" on its own line echoes 5. Anything that does
// not parse is returned unchanged for the pipeline to report.
func complete(src string) string {
	program, err := parser.Parse(lexer.NewTokenStream(lexer.New(src)), symbols.NewTable(), symbols.NewConstantPool())
	if err != nil {
		return src
	}
	switch last := program.Last().(type) {
	case *ast.Declaration:
		return src + "\n" + last.Name.Value
	case *ast.Assignment:
		return src + "\n" + last.Name.Value
	}
	return src
}

// collect reads lines until they form a complete submission. ok is false at
// end of input with nothing buffered.
func collect(next func(prompt string) (string, error), prompt, cont string) (src string, ok bool, err error) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := next(p)
		if errors.Is(err, io.EOF) {
			if b.Len() == 0 {
				return "", false, nil
			}
			// Evaluate what we have; the parser reports it as unterminated.
			return b.String(), true, nil
		}
		if err != nil {
			return "", true, err
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if strings.HasPrefix(strings.TrimSpace(b.String()), ":") || !Incomplete(b.String()) {
			return b.String(), true, nil
		}
	}
}

// Submit handles one submission: a meta command or source to evaluate. It
// returns false when the REPL should stop.
func (r *REPL) Submit(ctx context.Context, src string) bool {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return true
	}
	if strings.HasPrefix(trimmed, ":") {
		return r.command(trimmed)
	}

	pctx := r.sess.Run(complete(src))
	if !r.cfg.QuietWarnings {
		PrintWarnings(r.errOut, pctx.Warnings)
	}
	result, err := pctx.Result, pctx.Err()
	if err != nil {
		fmt.Fprintln(r.errOut, err.Error())
	} else {
		fmt.Fprintln(r.out, FormatNumber(result))
	}
	r.record(ctx, src, result, err)
	return true
}

// PrintWarnings writes one line per warning.
func PrintWarnings(w io.Writer, warnings []*diagnostics.DiagnosticError) {
	for _, warn := range warnings {
		fmt.Fprintln(w, warn.Error())
	}
}

func (r *REPL) command(cmd string) bool {
	switch strings.ToLower(cmd) {
	case config.CmdQuit:
		return false
	case config.CmdVars:
		bindings := r.sess.State().Bindings()
		if len(bindings) == 0 {
			fmt.Fprintln(r.out, "no bindings")
		}
		for _, b := range bindings {
			kind := "let"
			if b.Mutable {
				kind = "let mut"
			}
			fmt.Fprintf(r.out, "%s %s = %s\n", kind, b.Name, FormatNumber(b.Value))
		}
	case config.CmdDis:
		if r.sess.Listing() {
			r.sess.SetListing(nil)
			fmt.Fprintln(r.out, "disassembly off")
		} else {
			r.sess.SetListing(r.out)
			fmt.Fprintln(r.out, "disassembly on")
		}
	case config.CmdReset:
		r.sess.Reset()
		fmt.Fprintln(r.out, "bindings cleared")
	case config.CmdHelp:
		fmt.Fprintln(r.out, ":vars   list bindings")
		fmt.Fprintln(r.out, ":dis    toggle disassembly")
		fmt.Fprintln(r.out, ":reset  drop all bindings")
		fmt.Fprintln(r.out, ":quit   exit")
	default:
		fmt.Fprintf(r.errOut, "unknown command %s. Type :help for a list.\n", cmd)
	}
	return true
}

func (r *REPL) record(ctx context.Context, src string, result float64, err error) {
	if r.store == nil {
		return
	}
	e := history.Entry{Session: r.sess.ID(), Source: src}
	if err != nil {
		e.ErrorMessage = err.Error()
		if code, ok := diagnostics.CodeOf(err); ok {
			e.ErrorCode = string(code)
		}
	} else {
		e.Result, e.HasResult = result, true
	}
	if _, rerr := r.store.Record(ctx, e); rerr != nil {
		r.log.Warn("history record failed", "err", rerr)
	}
}

// RunLines evaluates submissions read from in without prompts, for piped
// input. Lines accumulate until they form a complete submission.
func (r *REPL) RunLines(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	next := func(string) (string, error) {
		if sc.Scan() {
			return sc.Text(), nil
		}
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}

	for {
		src, ok, err := collect(next, "", "")
		if err != nil {
			return err
		}
		if !ok || !r.Submit(ctx, src) {
			return nil
		}
	}
}

// Run starts the interactive loop on the terminal.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, banner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	r.loadHistory(ctx, ln)
	defer r.saveHistory(ln)

	for {
		src, ok, err := collect(ln.Prompt, r.cfg.Prompt, r.cfg.ContinuationPrompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(r.out)
			return nil
		}
		if strings.TrimSpace(src) != "" {
			ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		}
		if !r.Submit(ctx, src) {
			return nil
		}
	}
}

// loadHistory seeds liner from the submission store, or from the history
// file when no store is open.
func (r *REPL) loadHistory(ctx context.Context, ln *liner.State) {
	if r.store != nil {
		entries, err := r.store.Recent(ctx, r.cfg.HistoryLimit)
		if err != nil {
			r.log.Warn("loading history failed", "err", err)
			return
		}
		for _, e := range entries {
			ln.AppendHistory(strings.ReplaceAll(e.Source, "\n", " "))
		}
		return
	}

	path := r.cfg.HistoryFilePath()
	if path == "" {
		return
	}
	if f, err := os.Open(path); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
}

func (r *REPL) saveHistory(ln *liner.State) {
	path := r.cfg.HistoryFilePath()
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		r.log.Warn("saving history failed", "path", path, "err", err)
		return
	}
	_, _ = ln.WriteHistory(f)
	_ = f.Close()
}

// FormatNumber prints v the way results are shown: shortest form that
// round-trips.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
