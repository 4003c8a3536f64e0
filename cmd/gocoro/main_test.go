package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"gocoro": func() int {
			return run(os.Args[1:], os.Stdout, os.Stderr)
		},
	}))
}

func TestScript(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
	})
}

func TestStoreKeepsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := openStore(path, false)
	if err != nil {
		t.Fatal(err)
	}
	base := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	var added []*benchRun
	for i := 0; i < 3; i++ {
		r := &benchRun{
			Time:       base.Add(time.Duration(i) * time.Minute),
			Label:      []string{"", "pool", "linkname"}[i],
			Backend:    "chan",
			Threads:    i + 1,
			Switches:   200,
			SwitchTime: 100 * time.Microsecond,
		}
		if err := s.Add(r); err != nil {
			t.Fatal(err)
		}
		added = append(added, r)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = openStore(path, true)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(added, runs); diff != "" {
		t.Error(diff)
	}
	if runs[2].Seq != 3 {
		t.Errorf("got seq %d", runs[2].Seq)
	}
}

func TestRunSummary(t *testing.T) {
	r := &benchRun{
		Seq:        4,
		Time:       time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC),
		Label:      "pool",
		Backend:    "chan",
		Threads:    2,
		StackSize:  65536,
		Pool:       8,
		Switches:   400,
		SwitchTime: 100 * time.Microsecond,
		Creates:    10,
		CreateTime: 50 * time.Microsecond,
		Elapsed:    2 * time.Millisecond,
	}
	expected := `4 2024-11-01T12:00:00Z backend=chan threads=2 stack=65536 pool=8 switches=400 switch=250.0ns creates=10 create=5000.0ns elapsed=2ms label="pool"`
	if got := r.summary(); got != expected {
		t.Errorf("got\n%s\nexpected\n%s", got, expected)
	}
}
