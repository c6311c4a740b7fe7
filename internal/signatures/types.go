package signatures

import "fmt"

type Entry struct {
	Jumps int `json:"jumps"`
	Sigs  int `json:"sigs"`
}

// Snapshot maps system names to what the agency window showed for them in
// one reading. Names keep the order they were first seen in. The zero value
// is an empty snapshot.
type Snapshot struct {
	names   []string
	entries map[string]Entry
	dropped int
}

// Set adds or overwrites the entry of a system, an overwritten system keeps
// its original position.
func (s *Snapshot) Set(name string, entry Entry) {
	if s.entries == nil {
		s.entries = map[string]Entry{}
	}
	if _, ok := s.entries[name]; !ok {
		s.names = append(s.names, name)
	}
	s.entries[name] = entry
}

func (s Snapshot) Get(name string) (Entry, bool) {
	entry, ok := s.entries[name]
	return entry, ok
}

// Names returns the system names in insertion order.
func (s Snapshot) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s Snapshot) Len() int {
	return len(s.names)
}

// Dropped is the number of malformed records skipped while parsing.
func (s Snapshot) Dropped() int {
	return s.dropped
}

type Direction int

const (
	Spawned Direction = iota + 1
	Despawned
)

func (d Direction) String() string {
	switch d {
	case Spawned:
		return "spawned"
	case Despawned:
		return "despawned"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "spawned":
		*d = Spawned
	case "despawned":
		*d = Despawned
	default:
		return fmt.Errorf("unknown direction %q", string(text))
	}
	return nil
}

// DiffEvent is a change in the signature count of a system between two
// readings, Jumps is taken from the newer reading.
type DiffEvent struct {
	System       string    `json:"system"`
	Direction    Direction `json:"direction"`
	Jumps        int       `json:"jumps"`
	Sigs         int       `json:"sigs"`
	PreviousSigs int       `json:"previous_sigs"`
}
