package gocoro

import (
	"context"
	"encoding/binary"
	"log/slog"
)

// A checksummer hashes every scheduling decision of a Thread. Two runs of
// the same deterministic program produce the same checksum; a difference
// pinpoints (with debug logging) the first diverging step.
type checksummer struct {
	step   int
	hash   fnv64
	logger *slog.Logger
}

func newChecksummer(logger *slog.Logger) *checksummer {
	return &checksummer{
		hash:   newFnv64(),
		logger: logger,
	}
}

type checksumKey byte

const (
	checksumKeyCreate checksumKey = iota
	checksumKeySwitch
	checksumKeyDelete
	checksumKeyRecycle
)

var checksumKeyNames = [...]string{
	checksumKeyCreate:  "create",
	checksumKeySwitch:  "switch",
	checksumKeyDelete:  "delete",
	checksumKeyRecycle: "recycle",
}

func (k checksumKey) String() string {
	return checksumKeyNames[k]
}

func (c *checksummer) record(key checksumKey, a, b, d uint64) {
	c.hash.hashByte(byte(key))
	c.hash.hashInt(a)
	c.hash.hashInt(b)
	c.hash.hashInt(d)

	if c.logger.Enabled(context.TODO(), slog.LevelDebug) {
		c.logger.LogAttrs(context.TODO(), slog.LevelDebug, "checksummer",
			slog.Int("index", c.step),
			slog.String("key", key.String()),
			slog.Uint64("a", a),
			slog.Uint64("b", b),
			slog.Uint64("c", d),
			slog.Uint64("sum", uint64(c.hash)))
	}
	c.step++
}

func (c *checksummer) sum() []byte {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(c.hash))
	return n[:]
}
