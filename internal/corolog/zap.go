package corolog

import (
	"log/slog"

	zapslog "github.com/tommoulard/zap-slog"
	"go.uber.org/zap"
)

// Zap returns a zap logger whose entries are written by l.
func Zap(l *slog.Logger) (*zap.Logger, error) {
	return zap.NewProduction(zapslog.WrapCore(l))
}
