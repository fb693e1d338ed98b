package herd

import (
	"bytes"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
)

// RenderCountsChart renders the per-tick compartment series as a PNG line
// chart: one series per compartment over the tick axis. This is a consumer
// of Grid.History, not part of the tick algorithm.
func RenderCountsChart(history []Counts) ([]byte, error) {
	if len(history) < 2 {
		return nil, fmt.Errorf("history too short to chart: %d points", len(history))
	}

	ticks := make([]float64, len(history))
	susceptible := make([]float64, len(history))
	infected := make([]float64, len(history))
	immune := make([]float64, len(history))
	dead := make([]float64, len(history))
	for i, c := range history {
		ticks[i] = float64(c.Tick)
		susceptible[i] = float64(c.Susceptible)
		infected[i] = float64(c.Infected)
		immune[i] = float64(c.Immune)
		dead[i] = float64(c.Dead)
	}

	total := float64(history[0].Total())
	graph := chart.Chart{
		XAxis: chart.XAxis{
			Name: "tick",
		},
		YAxis: chart.YAxis{
			Name:  "individuals",
			Range: &chart.ContinuousRange{Min: 0, Max: total},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "susceptible",
				XValues: ticks,
				YValues: susceptible,
				Style:   chart.Style{StrokeColor: chart.ColorBlue},
			},
			chart.ContinuousSeries{
				Name:    "infected",
				XValues: ticks,
				YValues: infected,
				Style:   chart.Style{StrokeColor: chart.ColorRed},
			},
			chart.ContinuousSeries{
				Name:    "immune",
				XValues: ticks,
				YValues: immune,
				Style:   chart.Style{StrokeColor: chart.ColorGreen},
			},
			chart.ContinuousSeries{
				Name:    "dead",
				XValues: ticks,
				YValues: dead,
				Style:   chart.Style{StrokeColor: chart.ColorBlack},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering counts chart: %w", err)
	}
	return buf.Bytes(), nil
}
