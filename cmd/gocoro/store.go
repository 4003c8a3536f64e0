package main

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// benchRun is one recorded invocation of bench.
type benchRun struct {
	Seq uint64 `json:"-"`

	Time      time.Time `json:"time"`
	Label     string    `json:"label,omitempty"`
	Backend   string    `json:"backend"`
	Threads   int       `json:"threads"`
	StackSize int       `json:"stack_size"`
	Pool      int       `json:"pool"`

	Switches   int           `json:"switches"`
	SwitchTime time.Duration `json:"switch_time"`
	Creates    int           `json:"creates"`
	CreateTime time.Duration `json:"create_time"`
	Elapsed    time.Duration `json:"elapsed"`
}

func (r *benchRun) nsPerSwitch() float64 {
	if r.Switches == 0 {
		return 0
	}
	return float64(r.SwitchTime.Nanoseconds()) / float64(r.Switches)
}

func (r *benchRun) nsPerCreate() float64 {
	if r.Creates == 0 {
		return 0
	}
	return float64(r.CreateTime.Nanoseconds()) / float64(r.Creates)
}

func (r *benchRun) report() string {
	return fmt.Sprintf("backend=%s threads=%d stack=%d pool=%d switches=%d switch=%.1fns creates=%d create=%.1fns elapsed=%s",
		r.Backend, r.Threads, r.StackSize, r.Pool, r.Switches, r.nsPerSwitch(), r.Creates, r.nsPerCreate(), r.Elapsed.Round(time.Microsecond))
}

func (r *benchRun) summary() string {
	s := fmt.Sprintf("%d %s %s", r.Seq, r.Time.Format(time.RFC3339), r.report())
	if r.Label != "" {
		s += fmt.Sprintf(" label=%q", r.Label)
	}
	return s
}

var runsBucket = []byte("runs")

// store keeps bench runs in a bbolt database, keyed by a big-endian
// sequence number so iteration is in recording order.
type store struct {
	db *bolt.DB
}

func openStore(path string, readOnly bool) (*store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{
		Timeout:  time.Second,
		ReadOnly: readOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &store{db: db}, nil
}

func (s *store) Close() error {
	return s.db.Close()
}

func (s *store) Add(r *benchRun) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(runsBucket)
		if err != nil {
			return err
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		value, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if err := bucket.Put(binary.BigEndian.AppendUint64(nil, seq), value); err != nil {
			return err
		}
		r.Seq = seq
		return nil
	})
}

func (s *store) List() ([]*benchRun, error) {
	var runs []*benchRun
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(runsBucket)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			var r benchRun
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decoding run %x: %w", k, err)
			}
			r.Seq = binary.BigEndian.Uint64(k)
			runs = append(runs, &r)
			return nil
		})
	})
	return runs, err
}
