package herd

import (
	"math/rand"
	"sync"
	"time"
)

// Grid owns the rectangular population of individuals and advances it
// tick-by-tick. All mutation goes through Step; queries return copies so
// renderers never observe a tick in progress.
type Grid struct {
	mu        sync.RWMutex
	width     int
	height    int
	model     Model
	cells     []Cell
	tick      uint64
	counts    Counts
	history   []Counts
	rand      *rand.Rand
	seed      int64
	runID     string
	logger    Logger
	notifyMgr *NotificationManager
	notifiers []string
	stopCh    chan struct{}
	isRunning bool
}

// NewGrid builds a population of width*height individuals: every cell starts
// Susceptible, each is independently marked Immune with probability
// model.VaccinatedFraction (a Bernoulli trial per cell, not an exact count),
// and exactly one non-immune cell, chosen uniformly, becomes patient zero
// with a full infectious countdown.
//
// A seed of 0 derives one from the clock; any other value makes the whole
// run reproducible.
func NewGrid(width, height int, model Model, seed int64) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, &DimensionError{Width: width, Height: height}
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := &Grid{
		width:  width,
		height: height,
		model:  model,
		cells:  make([]Cell, width*height),
		rand:   rand.New(rand.NewSource(seed)),
		seed:   seed,
		logger: NewNoOpLogger(),
	}

	eligible := make([]int, 0, len(g.cells))
	for i := range g.cells {
		if g.rand.Float64() < model.VaccinatedFraction {
			g.cells[i].State = Immune
		} else {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoEligiblePatientZero
	}

	patientZero := eligible[g.rand.Intn(len(eligible))]
	g.cells[patientZero] = Cell{State: Infected, RemainingTicks: model.InfectiousDuration}

	g.recount()
	g.history = append(g.history, g.counts)
	return g, nil
}

// Step advances the simulation by one tick and returns the updated counts.
// Every cell's next state is computed from a snapshot of the grid as of
// tick start, so a cell infected this tick never transmits this tick.
// Stepping a grid with zero infected is a no-op apart from the tick counter.
func (g *Grid) Step() Counts {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.step()
}

func (g *Grid) step() Counts {
	g.tick++
	model := g.model

	if g.counts.Infected == 0 {
		g.counts.Tick = g.tick
		g.history = append(g.history, g.counts)
		g.notifyTick()
		return g.counts
	}

	// Double buffer: all reads against cur, all writes into g.cells.
	cur := make([]Cell, len(g.cells))
	copy(cur, g.cells)

	offsets := model.Neighborhood.Offsets()
	pending := make(map[int]struct{})

	for row := 0; row < g.height; row++ {
		for col := 0; col < g.width; col++ {
			i := row*g.width + col
			if cur[i].State != Infected {
				continue
			}

			// One independent trial per infected contact, even for cells
			// already scheduled, so multiple exposures compound to
			// 1 - (1-p)^k rather than a single draw.
			for _, off := range offsets {
				nr, nc := row+off[0], col+off[1]
				if nr < 0 || nr >= g.height || nc < 0 || nc >= g.width {
					continue
				}
				ni := nr*g.width + nc
				if cur[ni].State != Susceptible {
					continue
				}
				if g.rand.Float64() < model.InfectionProbability {
					pending[ni] = struct{}{}
				}
			}

			if remaining := cur[i].RemainingTicks - 1; remaining <= 0 {
				if g.rand.Float64() < model.MortalityProbability {
					g.cells[i] = Cell{State: Dead}
				} else {
					g.cells[i] = Cell{State: Immune}
				}
			} else {
				g.cells[i].RemainingTicks = remaining
			}
		}
	}

	// Commit scheduled infections after the full pass. Order does not
	// matter here: applying membership of a set is commutative.
	for i := range pending {
		g.cells[i] = Cell{State: Infected, RemainingTicks: model.InfectiousDuration}
	}

	g.recount()
	g.history = append(g.history, g.counts)
	if g.counts.Over() {
		g.logger.Infof("outbreak over: run_id=%s tick=%d dead=%d immune=%d",
			g.runID, g.tick, g.counts.Dead, g.counts.Immune)
	}
	g.notifyTick()
	return g.counts
}

// recount rebuilds the aggregate counts with a full scan. Callers hold mu.
func (g *Grid) recount() {
	c := Counts{Tick: g.tick}
	for i := range g.cells {
		switch g.cells[i].State {
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
	g.counts = c
}

func (g *Grid) notifyTick() {
	if g.notifyMgr == nil || len(g.notifiers) == 0 {
		return
	}
	event := TickEvent{
		RunID:     g.runID,
		Timestamp: time.Now().Unix(),
		Counts:    g.counts,
		Over:      g.counts.Over(),
	}
	g.notifyMgr.Enqueue(event, g.notifiers)
}

// Counts returns the aggregate compartment totals as of the last tick.
func (g *Grid) Counts() Counts {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.counts
}

// Tick returns the monotonically increasing tick counter.
func (g *Grid) Tick() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.tick
}

// Over reports whether the infected count has reached zero.
func (g *Grid) Over() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.counts.Over()
}

// Width returns the grid width in cells.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *Grid) Height() int { return g.height }

// Seed returns the seed the run was constructed with.
func (g *Grid) Seed() int64 { return g.seed }

// Model returns the model currently read by ticks.
func (g *Grid) Model() Model {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.model
}

// History returns a copy of the per-tick counts series, index 0 being the
// state right after construction. This is the only history the grid keeps;
// full cell states are never retained beyond the current tick.
func (g *Grid) History() []Counts {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Counts, len(g.history))
	copy(out, g.history)
	return out
}

// Snapshot captures every cell's (row, col, state) for external rendering.
func (g *Grid) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	cells := make([]CellState, 0, len(g.cells))
	for row := 0; row < g.height; row++ {
		for col := 0; col < g.width; col++ {
			cell := g.cells[row*g.width+col]
			cs := CellState{Row: row, Col: col, State: cell.State}
			if cell.State == Infected {
				cs.RemainingTicks = cell.RemainingTicks
			}
			cells = append(cells, cs)
		}
	}
	return Snapshot{
		RunID:  g.runID,
		Tick:   g.tick,
		Width:  g.width,
		Height: g.height,
		Cells:  cells,
	}
}

// SetModel swaps the model read by subsequent ticks. The vaccinated fraction
// and neighborhood of the original run keep their effect (vaccination is
// consumed at construction), but they are validated with the rest so a bad
// swap is rejected whole. An in-flight tick always runs against the model it
// started with.
func (g *Grid) SetModel(model Model) error {
	if err := model.Validate(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.model = model
	g.logger.Debugf("model swapped: run_id=%s tick=%d", g.runID, g.tick)
	return nil
}

// SetRunID tags the grid with an identifier used in events and snapshots.
func (g *Grid) SetRunID(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.runID = id
}

// RunID returns the grid's identifier.
func (g *Grid) RunID() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.runID
}

// SetLogger injects a logger. Passing nil restores the no-op logger.
func (g *Grid) SetLogger(logger Logger) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if logger == nil {
		logger = NewNoOpLogger()
	}
	g.logger = logger
}

// SetNotificationManager wires tick events to the given notifier IDs.
func (g *Grid) SetNotificationManager(mgr *NotificationManager, notifierIDs []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.notifyMgr = mgr
	g.notifiers = notifierIDs
}

// Run starts a background ticker that calls Step at the given interval.
// It returns immediately; call Stop to halt. Calling Run on a grid that is
// already running is a no-op, and a stopped grid can be restarted.
func (g *Grid) Run(interval time.Duration) {
	g.mu.Lock()
	if g.isRunning {
		g.mu.Unlock()
		return
	}
	g.stopCh = make(chan struct{})
	g.isRunning = true
	g.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				g.Step()
			case <-g.stopCh:
				g.mu.Lock()
				g.isRunning = false
				g.mu.Unlock()
				return
			}
		}
	}()
}

// Stop halts the background ticker started by Run.
func (g *Grid) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.isRunning {
		return
	}
	close(g.stopCh)
}

// Running reports whether the background ticker is active.
func (g *Grid) Running() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.isRunning
}
