package herd

// Counts holds the aggregate compartment totals after a given tick.
// The four compartments always sum to width*height.
type Counts struct {
	Tick        uint64 `json:"tick"`
	Susceptible int    `json:"susceptible"`
	Infected    int    `json:"infected"`
	Immune      int    `json:"immune"`
	Dead        int    `json:"dead"`
}

// Total returns the population size covered by the counts.
func (c Counts) Total() int {
	return c.Susceptible + c.Infected + c.Immune + c.Dead
}

// Over reports whether the outbreak has run its course. Further ticks are
// no-ops apart from the tick counter; the driver decides when to stop.
func (c Counts) Over() bool {
	return c.Infected == 0
}
