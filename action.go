package gocoro

import "strconv"

// An Action is passed along with every switch and returned by the switch it
// unblocks. Values other than the predefined ones are free for callers.
type Action int

const (
	ActionYield     Action = 1
	ActionTerminate Action = 2
	ActionEnter     Action = 3
)

func (a Action) String() string {
	switch a {
	case ActionYield:
		return "yield"
	case ActionTerminate:
		return "terminate"
	case ActionEnter:
		return "enter"
	default:
		return "action(" + strconv.Itoa(int(a)) + ")"
	}
}

// State is the lifecycle state of a Coroutine.
type State int

const (
	// StateUnstarted coroutines have not run their entry function yet.
	StateUnstarted State = iota
	// StateRunning coroutines are current or the caller of a running
	// coroutine. The leader is always running.
	StateRunning
	// StateSuspended coroutines yielded to their caller from inside their
	// entry function.
	StateSuspended
	// StateTerminated coroutines returned from their entry function.
	StateTerminated
	// StateDeleted coroutines were passed to Delete.
	StateDeleted
)

var stateNames = [...]string{
	StateUnstarted:  "unstarted",
	StateRunning:    "running",
	StateSuspended:  "suspended",
	StateTerminated: "terminated",
	StateDeleted:    "deleted",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}
