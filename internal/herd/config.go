package herd

import "fmt"

// RunConfig is the JSON document drivers submit to create a run. It is the
// flat, serializable form of the grid dimensions plus the epidemic model.
type RunConfig struct {
	Width                int     `json:"width"`
	Height               int     `json:"height"`
	InfectionProbability float64 `json:"infection_probability"`
	InfectiousDuration   int     `json:"infectious_duration"`
	MortalityProbability float64 `json:"mortality_probability"`
	VaccinatedFraction   float64 `json:"vaccinated_fraction"`

	// Neighborhood is "moore" (default) or "von-neumann".
	Neighborhood string `json:"neighborhood,omitempty"`

	// Seed makes the run reproducible; 0 derives one from the clock.
	Seed int64 `json:"seed,omitempty"`
}

// Model converts the config's parameter fields into a Model. The returned
// model is not yet validated; ValidateRunConfig or Model.Validate does that.
func (c RunConfig) Model() (Model, error) {
	neighborhood, err := ParseNeighborhood(c.Neighborhood)
	if err != nil {
		return Model{}, &ParameterError{Name: "neighborhood", Reason: err.Error()}
	}
	return Model{
		InfectionProbability: c.InfectionProbability,
		InfectiousDuration:   c.InfectiousDuration,
		MortalityProbability: c.MortalityProbability,
		VaccinatedFraction:   c.VaccinatedFraction,
		Neighborhood:         neighborhood,
	}, nil
}

// ValidateRunConfig checks dimensions and every model parameter, reporting
// all violations at once.
func ValidateRunConfig(c RunConfig) error {
	verr := &ValidationError{}

	if c.Width <= 0 || c.Height <= 0 {
		verr.Add(&DimensionError{Width: c.Width, Height: c.Height})
	}

	model, err := c.Model()
	if err != nil {
		verr.Add(err)
		return verr
	}
	if err := model.Validate(); err != nil {
		if inner, ok := err.(*ValidationError); ok {
			verr.Issues = append(verr.Issues, inner.Issues...)
		} else {
			verr.Add(err)
		}
	}

	return verr.ErrOrNil()
}

// BuildGridFromConfig validates the config and constructs the grid.
func BuildGridFromConfig(c RunConfig) (*Grid, error) {
	if err := ValidateRunConfig(c); err != nil {
		return nil, fmt.Errorf("validating run config: %w", err)
	}
	model, err := c.Model()
	if err != nil {
		return nil, err
	}
	return NewGrid(c.Width, c.Height, model, c.Seed)
}
