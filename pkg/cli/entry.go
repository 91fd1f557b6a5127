// Package cli is the snirk command line: run a file, run piped input, or
// start the REPL.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/snirk/internal/config"
	"github.com/funvibe/snirk/internal/history"
	"github.com/funvibe/snirk/internal/repl"
	"github.com/funvibe/snirk/internal/session"
)

// Exit codes
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Env is the process environment Run works against.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive reports whether Stdin is a terminal. Nil means detect it
	// from os.Stdin.
	Interactive func() bool
}

func isTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type options struct {
	configPath  string
	disassemble bool
	trace       bool
	breaks      string
	quiet       bool
	verbose     bool
	backend     string
	version     bool
	eval        string
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	fs := flag.NewFlagSet("snirk", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: snirk [flags] [file]")
		fmt.Fprintln(stderr, "With no file, reads stdin: a terminal starts the REPL, piped input is evaluated line by line.")
		fs.PrintDefaults()
	}

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "path to snirk.yaml (default: ./snirk.yaml, then ~/snirk.yaml)")
	fs.BoolVar(&opts.disassemble, "dis", false, "print the compiled instructions before running")
	fs.BoolVar(&opts.trace, "trace", false, "print every executed VM instruction to stderr")
	fs.StringVar(&opts.breaks, "break", "", "comma-separated source lines; the VM dumps registers and bindings to stderr on reaching each")
	fs.BoolVar(&opts.quiet, "quiet", false, "hide unused-binding warnings")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging")
	fs.StringVar(&opts.backend, "backend", "", "execution backend: vm or treewalk")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")
	fs.StringVar(&opts.eval, "e", "", "evaluate the given source and exit")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return opts, fs.Args(), nil
}

func loadConfig(opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, _, err = config.Discover()
	}
	if err != nil {
		return nil, err
	}

	if opts.disassemble {
		cfg.Disassemble = true
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	if opts.backend != "" {
		cfg.Backend = opts.backend
	}
	if opts.quiet {
		cfg.QuietWarnings = true
	}
	return cfg, nil
}

// Run executes the command line in args (without the program name) and
// returns the process exit code.
func Run(ctx context.Context, args []string, env Env) int {
	opts, rest, err := parseFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitOK
	}
	if err != nil {
		return ExitUsage
	}

	if opts.version {
		fmt.Fprintln(env.Stdout, "snirk "+config.Version)
		return ExitOK
	}
	if len(rest) > 1 {
		fmt.Fprintln(env.Stderr, "snirk: at most one source file")
		return ExitUsage
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintln(env.Stderr, "snirk:", err)
		return ExitError
	}
	if opts.backend != "" && opts.backend != "vm" && opts.backend != "treewalk" {
		fmt.Fprintf(env.Stderr, "snirk: unknown backend %q\n", opts.backend)
		return ExitUsage
	}

	breakpoints, err := parseLines(opts.breaks)
	if err != nil {
		fmt.Fprintln(env.Stderr, "snirk: -break:", err)
		return ExitUsage
	}
	if (opts.trace || len(breakpoints) > 0) && cfg.Backend != "vm" {
		fmt.Fprintf(env.Stderr, "snirk: -trace and -break need the vm backend, not %q\n", cfg.Backend)
		return ExitUsage
	}

	logger := slog.New(slog.NewTextHandler(env.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	sessOpts := []session.Option{
		session.WithBackend(cfg.Backend),
		session.WithLogger(logger),
	}
	if cfg.Disassemble {
		sessOpts = append(sessOpts, session.WithListing(env.Stdout))
	}
	if opts.trace {
		sessOpts = append(sessOpts, session.WithTrace(env.Stderr))
	}
	if len(breakpoints) > 0 {
		sessOpts = append(sessOpts, session.WithBreakpoints(env.Stderr, breakpoints...))
	}

	switch {
	case opts.eval != "":
		return runSource(session.New(sessOpts...), cfg, opts.eval, env)

	case len(rest) == 1:
		path := rest[0]
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(env.Stderr, "snirk:", err)
			return ExitError
		}
		if !config.IsSourceFile(path) {
			logger.Warn("unrecognized source extension", "path", path, "want", config.SourceFileExt)
		}
		sessOpts = append(sessOpts, session.WithFile(path))
		return runSource(session.New(sessOpts...), cfg, string(data), env)
	}

	interactive := env.Interactive
	if interactive == nil {
		interactive = isTerminal
	}
	sess := session.New(sessOpts...)
	logger.Debug("session started", "session", sess.ID(), "backend", sess.Backend())

	if !interactive() {
		r := repl.New(sess, cfg, nil, env.Stdout, env.Stderr)
		if err := r.RunLines(ctx, env.Stdin); err != nil {
			fmt.Fprintln(env.Stderr, "snirk:", err)
			return ExitError
		}
		return ExitOK
	}

	store := openHistory(ctx, cfg, logger)
	defer store.Close()

	r := repl.New(sess, cfg, store, env.Stdout, env.Stderr)
	if err := r.Run(ctx); err != nil {
		fmt.Fprintln(env.Stderr, "snirk:", err)
		return ExitError
	}
	return ExitOK
}

// runSource evaluates a whole program and prints its result.
func runSource(sess *session.Session, cfg *config.Config, src string, env Env) int {
	ctx := sess.Run(src)
	if !cfg.QuietWarnings {
		repl.PrintWarnings(env.Stderr, ctx.Warnings)
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(env.Stderr, err.Error())
		return ExitError
	}
	fmt.Fprintln(env.Stdout, repl.FormatNumber(ctx.Result))
	return ExitOK
}

// parseLines reads a comma-separated list of positive line numbers.
func parseLines(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var lines []int
	for _, field := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad line number %q", field)
		}
		lines = append(lines, n)
	}
	return lines, nil
}

// openHistory opens the submission store. A store that cannot be opened only
// disables recording.
func openHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger) *history.Store {
	path := cfg.HistoryDBPath()
	if path == "" {
		return nil
	}
	store, err := history.Open(ctx, path)
	if err != nil {
		logger.Warn("history disabled", "path", path, "err", err)
		return nil
	}
	return store
}
