//go:build never

package gocoro

// This file pins the versions of tools used in this repository so they are
// tracked in go.mod.

import (
	// Allow running the CLI with go run.
	_ "github.com/jellevandenhooff/gocoro/cmd/gocoro"

	// Tools used by gocoro. For this repository.
	_ "github.com/go-task/task/v3/cmd/task"
	_ "golang.org/x/tools/cmd/goimports"
	_ "golang.org/x/tools/cmd/stringer"
	_ "mvdan.cc/gofumpt"
)
