/*
Gocoro is a tool for trying out and measuring gocoro coroutines.

Usage: gocoro <command> [arguments]

The commands are:

	demo           run two coroutines interleaved by a driver
	bench          measure switch and creation cost
	history        list recorded benchmark runs
	help           print this help

The 'demo' command:

Usage: gocoro demo [-n=...] [-stack-size=...] [-pool=...] [-checksum] [logging flags]

The demo command creates two coroutines that each yield 0, 1, ..., n-1 and
enters them in turn until both terminate, printing every action the driver
receives. The -checksum flag prints the thread's switch checksum at the end;
identical runs print identical checksums.

The 'bench' command:

Usage: gocoro bench [-n=...] [-creates=...] [-threads=...] [-stack-size=...] [-pool=...] [-track] [-db=...] [-label=...] [logging flags]

The bench command runs one thread per worker goroutine. Every thread enters
a coroutine that yields back n times, and then creates, runs and deletes
-creates short-lived coroutines. The results are printed and logged. With
-pool, deleted coroutines are recycled instead of freed.

The -track flag registers every stack with a shared tracker and fails if any
stack is still registered at the end.

The -db flag appends the results to a bbolt database, tagged with -label.

The 'history' command:

Usage: gocoro history -db=...

The history command lists benchmark runs recorded with bench -db, oldest
first.

Logging flags:

The -log-level flag sets the minimum level logged to stderr (debug, info,
warn, error). The -logformat flag is one of raw, indented or pretty. The
-traceflags flag is a comma-separated list of trace categories to enable:
"switch" logs every switch and "stack" logs stack allocation and usage.
*/
package main
