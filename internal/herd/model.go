package herd

import "fmt"

// Model is the immutable parameter set read by the grid's tick algorithm.
// A model has no behavior of its own beyond validation; re-parameterizing a
// running grid means swapping in a new validated model (see Grid.SetModel).
type Model struct {
	// InfectionProbability is the chance that one infected neighbor
	// infects a given susceptible individual during one tick.
	InfectionProbability float64

	// InfectiousDuration is the number of ticks an individual stays
	// infected before resolving to Dead or Immune. Must be >= 1.
	InfectiousDuration int

	// MortalityProbability is the chance an individual dies rather than
	// recovers when its infectious countdown expires.
	MortalityProbability float64

	// VaccinatedFraction is the per-cell probability of starting Immune.
	// It is consumed once, at grid construction.
	VaccinatedFraction float64

	// Neighborhood fixes contact connectivity for the run.
	Neighborhood Neighborhood
}

// Validate checks every parameter and reports all violations at once.
// Probabilities must lie in [0, 1] and the duration must be at least 1.
func (m Model) Validate() error {
	verr := &ValidationError{}

	checkProbability(verr, "infection_probability", m.InfectionProbability)
	checkProbability(verr, "mortality_probability", m.MortalityProbability)
	checkProbability(verr, "vaccinated_fraction", m.VaccinatedFraction)

	if m.InfectiousDuration < 1 {
		verr.Add(&ParameterError{
			Name:   "infectious_duration",
			Reason: fmt.Sprintf("must be >= 1, got %d", m.InfectiousDuration),
		})
	}
	if m.Neighborhood != Moore && m.Neighborhood != VonNeumann {
		verr.Add(&ParameterError{
			Name:   "neighborhood",
			Reason: fmt.Sprintf("unknown connectivity %d", m.Neighborhood),
		})
	}

	return verr.ErrOrNil()
}

func checkProbability(verr *ValidationError, name string, p float64) {
	if p < 0 || p > 1 {
		verr.Add(&ParameterError{
			Name:   name,
			Reason: fmt.Sprintf("must be in [0, 1], got %g", p),
		})
	}
}
