package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/jellevandenhooff/gocoro"
	"github.com/jellevandenhooff/gocoro/internal/corolog"
)

const doc = `Gocoro is a tool for trying out and measuring gocoro coroutines.

Usage: gocoro <command> [arguments]

The commands are:

    demo           run two coroutines interleaved by a driver
    bench          measure switch and creation cost
    history        list recorded benchmark runs
    help           print this help

Run 'gocoro <command> -h' for the flags of a command.
`

func commandName(cmd string) string {
	return fmt.Sprintf("%s %s", path.Base(os.Args[0]), cmd)
}

// logFlags are the logging flags shared by all commands that run coroutines.
type logFlags struct {
	level      *string
	format     *string
	traceflags *string
}

func addLogFlags(fs *flag.FlagSet) *logFlags {
	return &logFlags{
		level:      fs.String("log-level", "warn", "minimum level to log: debug|info|warn|error"),
		format:     fs.String("logformat", "pretty", "log formatting: raw|indented|pretty"),
		traceflags: fs.String("traceflags", "", "comma-separated trace flags to enable: "+gocoro.KnownTraceflags()),
	}
}

func (f *logFlags) logger(stderr io.Writer) (*slog.Logger, error) {
	level, err := corolog.ParseLevel(*f.level)
	if err != nil {
		return nil, err
	}
	format, err := corolog.ParseFormat(*f.format)
	if err != nil {
		return nil, err
	}
	if err := gocoro.ParseTraceflags(*f.traceflags); err != nil {
		return nil, err
	}
	return corolog.NewLogger(corolog.ConsoleWriter(stderr, format), level), nil
}

// threadFlags configure the threads a command creates.
type threadFlags struct {
	stackSize *int
	pool      *int
}

func addThreadFlags(fs *flag.FlagSet) *threadFlags {
	return &threadFlags{
		stackSize: fs.Int("stack-size", gocoro.DefaultStackSize, "coroutine stack size in bytes"),
		pool:      fs.Int("pool", 0, "number of deleted coroutines kept for reuse per thread"),
	}
}

func (f *threadFlags) validate() error {
	if *f.stackSize <= 0 {
		return fmt.Errorf("bad -stack-size %d", *f.stackSize)
	}
	if *f.pool < 0 {
		return fmt.Errorf("bad -pool %d", *f.pool)
	}
	return nil
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(path.Base(os.Args[0]), flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, doc)
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 2
	}
	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]

	var err error
	switch cmd {
	case "demo":
		err = demoCommand(cmdArgs, stdout, stderr)
	case "bench":
		err = benchCommand(cmdArgs, stdout, stderr)
	case "history":
		err = historyCommand(cmdArgs, stdout, stderr)
	case "help":
		fmt.Fprint(stdout, doc)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if errors.Is(err, errUsage) {
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", commandName(cmd), err)
		return 1
	}
	return 0
}

// errUsage is returned by commands after reporting bad flags.
var errUsage = errors.New("usage")

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments %q\n", fs.Args())
		return errUsage
	}
	return nil
}

func demoCommand(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet(commandName("demo"), flag.ContinueOnError)
	fs.SetOutput(stderr)
	n := fs.Int("n", 3, "values yielded by every coroutine")
	checksum := fs.Bool("checksum", false, "print the switch checksum")
	tf := addThreadFlags(fs)
	lf := addLogFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := tf.validate(); err != nil {
		return err
	}
	logger, err := lf.logger(stderr)
	if err != nil {
		return err
	}

	t := gocoro.NewThread(gocoro.ThreadConfig{
		Name:      "demo",
		StackSize: *tf.stackSize,
		PoolSize:  *tf.pool,
		Checksum:  *checksum,
		Logger:    logger,
	})
	defer t.Close()

	count := func(any) {
		for i := 0; i < *n; i++ {
			t.Yield(gocoro.Action(i))
		}
	}
	cos := []*gocoro.Coroutine{t.New(count, nil), t.New(count, nil)}

	done := 0
	for done < len(cos) {
		for _, co := range cos {
			if co.State() == gocoro.StateTerminated {
				continue
			}
			// Values are printed as numbers: a coroutine may yield 2,
			// which is also ActionTerminate.
			action := t.Enter(co)
			if co.State() == gocoro.StateTerminated {
				fmt.Fprintf(stdout, "coroutine %d terminated\n", co.ID())
				done++
				continue
			}
			fmt.Fprintf(stdout, "coroutine %d yielded %d\n", co.ID(), int(action))
		}
	}
	for _, co := range cos {
		t.Delete(co)
	}

	if *checksum {
		fmt.Fprintf(stdout, "checksum %x\n", t.Checksum())
	}
	return nil
}

func historyCommand(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet(commandName("history"), flag.ContinueOnError)
	fs.SetOutput(stderr)
	dbPath := fs.String("db", "", "bbolt database written by bench -db")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *dbPath == "" {
		return errors.New("missing -db")
	}

	store, err := openStore(*dbPath, true)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "no runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintln(stdout, r.summary())
	}
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
