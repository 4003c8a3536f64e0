package corolog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"time"
)

type Stackframe struct {
	File     string `json:"file"`
	Function string `json:"function"`
	Line     int    `json:"line"`
}

// Log is one parsed JSON log line.
type Log struct {
	Index int `json:"-"`

	Time      time.Time   `json:"time"`
	Level     slog.Level  `json:"level"`
	Msg       string      `json:"msg"`
	Source    *Stackframe `json:"source"`
	Thread    string      `json:"thread"`
	Coroutine int         `json:"coroutine"`
	Step      int         `json:"step"`
}

// ParseLog parses newline separated JSON logs, skipping lines that are not
// JSON.
func ParseLog(logs []byte) []*Log {
	var out []*Log

	for _, line := range bytes.Split(logs, []byte("\n")) {
		var log Log
		if err := json.Unmarshal(line, &log); err != nil {
			continue
		}
		log.Index = len(out)
		out = append(out, &log)
	}

	return out
}
