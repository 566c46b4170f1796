package scaffold

import "fmt"

// State is a pipeline stage.
type State string

const (
	StateInit             State = "Init"
	StateDirectoryChecked State = "DirectoryChecked"
	StateVersionResolved  State = "VersionResolved"
	StateFetching         State = "Fetching"
	StateExtracted        State = "Extracted"
	StateManifestWritten  State = "ManifestWritten"
	StateInstalling       State = "Installing"
	StateDone             State = "Done"
	StateAborting         State = "Aborting"
)

// IsTerminal reports whether no further transition may leave s.
func IsTerminal(s State) bool {
	return s == StateDone || s == StateAborting
}

var transitions = map[State][]State{
	StateInit:             {StateDirectoryChecked},
	StateDirectoryChecked: {StateVersionResolved},
	StateVersionResolved:  {StateFetching},
	StateFetching:         {StateExtracted, StateAborting},
	StateExtracted:        {StateManifestWritten, StateAborting},
	StateManifestWritten:  {StateInstalling, StateAborting},
	StateInstalling:       {StateDone, StateAborting},
}

func isAllowedTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// machine tracks the current state and the path taken to reach it.
type machine struct {
	current State
	history []State
}

func newMachine() *machine {
	return &machine{current: StateInit, history: []State{StateInit}}
}

func (m *machine) transition(to State) error {
	if !isAllowedTransition(m.current, to) {
		return fmt.Errorf("disallowed pipeline transition %s -> %s", m.current, to)
	}
	m.current = to
	m.history = append(m.history, to)
	return nil
}
