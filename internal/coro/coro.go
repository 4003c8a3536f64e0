// Package coro is the context switch engine underneath gocoro.
//
// A Context is the saved execution state of one coroutine. Switch saves the
// running side into one Context and resumes another, passing an action tag
// across. Exactly one side runs at a time: Switch returns only once some
// other Switch targets the Context it saved into, and it returns the action
// that Switch was given.
//
// Two backends exist, selected at build time. The default one gives each
// Context a goroutine and hands control over with an unbuffered channel.
// Building with the linkname tag instead uses the Go runtime's own
// coroutines (the ones that power iter.Pull) through go:linkname, which
// switch goroutines directly without going through the scheduler. The
// linkname backend needs -ldflags=-checklinkname=0 on go1.23 and later.
package coro
