// Demo: sweep vaccination coverage and watch the herd immunity threshold.
// For each coverage level the same disease runs on the same seed until
// extinction; the attack rate collapses once the immune fraction crosses
// the threshold for sustained transmission.
//
// Run with: go run ./cmd/demo
package main

import (
	"fmt"
	"os"

	"github.com/daniacca/herdsim/internal/herd"
)

func main() {
	const (
		width  = 50
		height = 50
		seed   = 42
	)

	model := herd.Model{
		InfectionProbability: 0.30,
		InfectiousDuration:   4,
		MortalityProbability: 0.02,
		Neighborhood:         herd.Moore,
	}

	fmt.Printf("Herd immunity sweep: %dx%d grid, infection=%.2f, duration=%d, mortality=%.2f\n\n",
		width, height, model.InfectionProbability, model.InfectiousDuration, model.MortalityProbability)
	fmt.Println("coverage  vaccinated  ever infected  attack rate  ticks")

	for coverage := 0.0; coverage < 1.0; coverage += 0.1 {
		m := model
		m.VaccinatedFraction = coverage

		grid, err := herd.NewGrid(width, height, m, seed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "coverage %.1f: %v\n", coverage, err)
			continue
		}

		for !grid.Over() {
			grid.Step()
		}

		initial := grid.History()[0]
		final := grid.Counts()
		total := final.Total()
		everInfected := final.Dead + (final.Immune - initial.Immune)

		fmt.Printf("  %4.0f%%   %9d  %13d  %10.1f%%  %5d\n",
			coverage*100, initial.Immune, everInfected,
			100*float64(everInfected)/float64(total), grid.Tick())
	}
}
