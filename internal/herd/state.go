package herd

import (
	"encoding/json"
	"fmt"
)

// State is the disease state of a single individual. An individual only ever
// moves forward through the progression; Immune and Dead are terminal.
type State uint8

const (
	Susceptible State = iota
	Infected
	Immune
	Dead
)

func (s State) String() string {
	switch s {
	case Susceptible:
		return "susceptible"
	case Infected:
		return "infected"
	case Immune:
		return "immune"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state can never change again.
func (s State) Terminal() bool {
	return s == Immune || s == Dead
}

// MarshalJSON encodes the state as its lowercase name so that snapshot and
// event payloads are readable by external renderers.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseState(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseState parses a state name as produced by State.String.
func ParseState(name string) (State, error) {
	switch name {
	case "susceptible":
		return Susceptible, nil
	case "infected":
		return Infected, nil
	case "immune":
		return Immune, nil
	case "dead":
		return Dead, nil
	default:
		return Susceptible, fmt.Errorf("unknown state %q", name)
	}
}

// Cell is one individual in the grid. RemainingTicks is the infectious
// countdown and is meaningful only while State == Infected.
type Cell struct {
	State          State
	RemainingTicks int
}

// Neighborhood selects the contact connectivity used during a tick.
// Edges are clamped; there is no wrap-around.
type Neighborhood uint8

const (
	// Moore is the 8-connected neighborhood (orthogonal + diagonal).
	Moore Neighborhood = iota
	// VonNeumann is the 4-connected neighborhood (orthogonal only).
	VonNeumann
)

var mooreOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

var vonNeumannOffsets = [4][2]int{
	{-1, 0}, {0, -1}, {0, 1}, {1, 0},
}

// Offsets returns the (row, col) deltas of the neighborhood in a fixed
// row-major order. The order matters for reproducibility: contact trials
// consume random draws in exactly this sequence.
func (n Neighborhood) Offsets() [][2]int {
	if n == VonNeumann {
		return vonNeumannOffsets[:]
	}
	return mooreOffsets[:]
}

func (n Neighborhood) String() string {
	if n == VonNeumann {
		return "von-neumann"
	}
	return "moore"
}

// ParseNeighborhood parses a neighborhood name. The empty string selects
// Moore, the default connectivity.
func ParseNeighborhood(name string) (Neighborhood, error) {
	switch name {
	case "", "moore", "8":
		return Moore, nil
	case "von-neumann", "vonneumann", "4":
		return VonNeumann, nil
	default:
		return Moore, fmt.Errorf("unknown neighborhood %q", name)
	}
}
