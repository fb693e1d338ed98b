package herd

import (
	"encoding/json"
	"fmt"
)

// CellState is one grid cell in a snapshot, addressed by position.
type CellState struct {
	Row            int   `json:"row"`
	Col            int   `json:"col"`
	State          State `json:"state"`
	RemainingTicks int   `json:"remaining_ticks,omitempty"`
}

// Snapshot is a point-in-time capture of the full grid, the wire format
// consumed by external renderers. It is row-major and always complete:
// exactly width*height cells.
type Snapshot struct {
	RunID  string      `json:"run_id"`
	Tick   uint64      `json:"tick"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Cells  []CellState `json:"cells"`
}

// ValidateSnapshot checks that a snapshot is structurally sound:
// positive dimensions, exactly one cell per position, all positions in
// bounds. Returns nil when the snapshot is valid.
func ValidateSnapshot(s Snapshot) error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("snapshot has invalid dimensions %dx%d", s.Width, s.Height)
	}
	if len(s.Cells) != s.Width*s.Height {
		return fmt.Errorf("snapshot has %d cells, expected %d", len(s.Cells), s.Width*s.Height)
	}

	seen := make(map[int]struct{}, len(s.Cells))
	for i, cell := range s.Cells {
		if cell.Row < 0 || cell.Row >= s.Height || cell.Col < 0 || cell.Col >= s.Width {
			return fmt.Errorf("cell at index %d has out-of-bounds position (%d, %d)", i, cell.Row, cell.Col)
		}
		pos := cell.Row*s.Width + cell.Col
		if _, exists := seen[pos]; exists {
			return fmt.Errorf("duplicate cell position (%d, %d)", cell.Row, cell.Col)
		}
		seen[pos] = struct{}{}
	}
	return nil
}

// CountsOf recomputes aggregate counts from the snapshot's cells.
func (s Snapshot) CountsOf() Counts {
	c := Counts{Tick: s.Tick}
	for _, cell := range s.Cells {
		switch cell.State {
		case Susceptible:
			c.Susceptible++
		case Infected:
			c.Infected++
		case Immune:
			c.Immune++
		case Dead:
			c.Dead++
		}
	}
	return c
}

// EncodeSnapshotJSON encodes a snapshot to JSON.
func EncodeSnapshotJSON(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshotJSON decodes a snapshot from JSON.
func DecodeSnapshotJSON(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, nil
}
