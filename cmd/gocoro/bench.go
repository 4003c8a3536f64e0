package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jellevandenhooff/gocoro"
	"github.com/jellevandenhooff/gocoro/internal/corolog"
)

type benchConfig struct {
	rounds    int
	creates   int
	stackSize int
	pool      int
	tracker   gocoro.StackTracker
	logger    *slog.Logger
}

type threadResult struct {
	switches   int
	switchTime time.Duration
	creates    int
	createTime time.Duration
}

// benchThread runs one thread to completion on the calling goroutine.
func benchThread(id int, cfg benchConfig) (res threadResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("thread %d: %v", id, r)
		}
	}()

	t := gocoro.NewThread(gocoro.ThreadConfig{
		Name:      fmt.Sprintf("bench%d", id),
		StackSize: cfg.stackSize,
		PoolSize:  cfg.pool,
		Logger:    cfg.logger,
		Tracker:   cfg.tracker,
	})
	defer t.Close()

	pingpong := t.New(func(any) {
		for {
			t.Yield(gocoro.ActionYield)
		}
	}, nil)
	start := time.Now()
	for i := 0; i < cfg.rounds; i++ {
		t.Enter(pingpong)
	}
	res.switchTime = time.Since(start)
	res.switches = 2 * cfg.rounds
	t.Delete(pingpong)

	noop := func(any) {}
	start = time.Now()
	for i := 0; i < cfg.creates; i++ {
		co := t.New(noop, nil)
		t.Enter(co)
		t.Delete(co)
	}
	res.createTime = time.Since(start)
	res.creates = cfg.creates

	return res, nil
}

func benchCommand(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet(commandName("bench"), flag.ContinueOnError)
	fs.SetOutput(stderr)
	rounds := fs.Int("n", 100000, "round trips into a coroutine per thread")
	creates := fs.Int("creates", 1000, "coroutines created and deleted per thread")
	threads := fs.Int("threads", runtime.GOMAXPROCS(0), "number of threads, each on its own goroutine")
	track := fs.Bool("track", false, "check every stack is released at the end")
	dbPath := fs.String("db", "", "bbolt database to record the run in")
	label := fs.String("label", "", "label for the recorded run")
	tf := addThreadFlags(fs)
	lf := addLogFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := tf.validate(); err != nil {
		return err
	}
	if *rounds <= 0 || *creates < 0 || *threads <= 0 {
		return fmt.Errorf("bad -n %d, -creates %d or -threads %d", *rounds, *creates, *threads)
	}
	logger, err := lf.logger(stderr)
	if err != nil {
		return err
	}
	zl, err := corolog.Zap(logger)
	if err != nil {
		return err
	}
	defer zl.Sync()

	cfg := benchConfig{
		rounds:    *rounds,
		creates:   *creates,
		stackSize: *tf.stackSize,
		pool:      *tf.pool,
		logger:    logger,
	}
	var live func() int
	if *track {
		tracker := gocoro.NewStackTracker()
		cfg.tracker = tracker
		live = tracker.Live
	}

	results := make([]threadResult, *threads)
	started := time.Now()
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			res, err := benchThread(i, cfg)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(started)

	if live != nil {
		if n := live(); n != 0 {
			return fmt.Errorf("%d stacks still registered after all threads closed", n)
		}
	}

	r := &benchRun{
		Time:      started.UTC(),
		Label:     *label,
		Backend:   gocoro.Backend,
		Threads:   *threads,
		StackSize: *tf.stackSize,
		Pool:      *tf.pool,
		Elapsed:   elapsed,
	}
	for _, res := range results {
		r.Switches += res.switches
		r.SwitchTime += res.switchTime
		r.Creates += res.creates
		r.CreateTime += res.createTime
	}

	zl.Info("bench finished",
		zap.String("backend", r.Backend),
		zap.Int("threads", r.Threads),
		zap.Int("switches", r.Switches),
		zap.Float64("switch_ns", r.nsPerSwitch()),
		zap.Int("creates", r.Creates),
		zap.Float64("create_ns", r.nsPerCreate()),
		zap.Duration("elapsed", r.Elapsed))
	fmt.Fprintln(stdout, r.report())

	if *dbPath != "" {
		store, err := openStore(*dbPath, false)
		if err != nil {
			return err
		}
		if err := store.Add(r); err != nil {
			return errors.Join(err, store.Close())
		}
		if err := store.Close(); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "recorded run %d in %s\n", r.Seq, *dbPath)
	}
	return nil
}
