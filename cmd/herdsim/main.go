package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/daniacca/herdsim/internal/herd"
)

func main() {
	var (
		width        = flag.Int("width", 40, "grid width in cells")
		height       = flag.Int("height", 30, "grid height in cells")
		infection    = flag.Float64("infection", 0.25, "infection probability per contact per tick")
		duration     = flag.Int("duration", 5, "infectious duration in ticks")
		mortality    = flag.Float64("mortality", 0.05, "probability of death when the infection expires")
		vaccinated   = flag.Float64("vaccinated", 0.5, "initial vaccination coverage")
		neighborhood = flag.String("neighborhood", "moore", "contact connectivity: moore or von-neumann")
		seed         = flag.Int64("seed", 0, "random seed (0 = derive from the clock)")
		ticks        = flag.Int("ticks", 0, "tick budget (0 = run until the outbreak is over)")
		chartFile    = flag.String("chart", "", "optional path to write a PNG chart of the counts history")
	)
	flag.Parse()

	cfg := herd.RunConfig{
		Width:                *width,
		Height:               *height,
		InfectionProbability: *infection,
		InfectiousDuration:   *duration,
		MortalityProbability: *mortality,
		VaccinatedFraction:   *vaccinated,
		Neighborhood:         *neighborhood,
		Seed:                 *seed,
	}

	grid, err := herd.BuildGridFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating run: %v\n", err)
		os.Exit(1)
	}

	// An infection occupies a cell for at most InfectiousDuration ticks
	// and every cell is infected at most once, so extinction is bounded.
	budget := *ticks
	if budget <= 0 {
		budget = grid.Width() * grid.Height() * *duration
	}

	for i := 0; i < budget; i++ {
		counts := grid.Step()
		if *ticks <= 0 && counts.Over() {
			break
		}
	}

	printSummary(grid)

	if *chartFile != "" {
		png, err := herd.RenderCountsChart(grid.History())
		if err != nil {
			fmt.Fprintf(os.Stderr, "error rendering chart: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*chartFile, png, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing chart: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("chart written to %s\n", *chartFile)
	}
}

func printSummary(grid *herd.Grid) {
	history := grid.History()
	initial := history[0]
	final := grid.Counts()
	total := final.Total()

	everInfected := final.Dead + (final.Immune - initial.Immune) + final.Infected

	fmt.Printf("Simulation finished (size=%dx%d, seed=%d, ticks=%d)\n",
		grid.Width(), grid.Height(), grid.Seed(), grid.Tick())
	fmt.Printf("  vaccinated at start: %d (%.1f%%)\n",
		initial.Immune, 100*float64(initial.Immune)/float64(total))
	fmt.Printf("  susceptible: %d\n", final.Susceptible)
	fmt.Printf("  infected:    %d\n", final.Infected)
	fmt.Printf("  immune:      %d\n", final.Immune)
	fmt.Printf("  dead:        %d\n", final.Dead)
	fmt.Printf("  attack rate: %.1f%% of the population was ever infected\n",
		100*float64(everInfected)/float64(total))
	if !final.Over() {
		fmt.Printf("  outbreak still active after the tick budget\n")
	}
}
