package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/Agrid-Dev/thermohouse/internal/sim"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(24)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

const (
	plotHeight = 12
	plotWidth  = 80
)

func renderReport(houseID, runID string, r sim.Report) string {
	title := "house " + houseID
	if runID != "" {
		title += "  run " + runID
	}

	rows := [][2]string{
		{"steps", fmt.Sprintf("%d (%.1f h)", r.Steps, r.ElapsedHours)},
		{"interior min/mean/max", fmt.Sprintf("%.2f / %.2f / %.2f °F", r.MinTemp, r.MeanTemp, r.MaxTemp)},
		{"interior stddev", fmt.Sprintf("%.2f °F", r.StdDev)},
		{"final temp", fmt.Sprintf("%.2f °F", r.FinalTemp)},
		{"fine", fmt.Sprintf("%d", r.Fine)},
		{"too hot", fmt.Sprintf("%d", r.TooHot)},
		{"too cold", fmt.Sprintf("%d", r.TooCold)},
		{"longest out of band", fmt.Sprintf("%d steps", r.LongestOutOfBand)},
		{"aux steps", fmt.Sprintf("%d", r.AuxSteps)},
		{"aux energy", fmt.Sprintf("%.0f BTU", r.AuxEnergy)},
		{"stored heat at end", fmt.Sprintf("%.0f BTU", r.FinalStoredHeat)},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	for _, row := range rows {
		v := valueStyle
		if (row[0] == "too hot" || row[0] == "too cold") && row[1] != "0" {
			v = warnStyle
		}
		b.WriteString(labelStyle.Render(row[0]))
		b.WriteString(v.Render(row[1]))
		b.WriteString("\n")
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// spanCaption labels a plot with the simulated time its x axis covers.
func spanCaption(what string, elapsedHours float64) string {
	return fmt.Sprintf("%s over %.1f days", what, elapsedHours/24)
}

func renderTemperaturePlot(houseID string, elapsedHours float64, interior, ambient []float64) string {
	if len(interior) == 0 {
		return ""
	}
	return asciigraph.PlotMany([][]float64{interior, ambient},
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
		asciigraph.SeriesLegends("interior", "ambient"),
		asciigraph.Caption(spanCaption(houseID+" temperature °F", elapsedHours)),
	)
}

// renderAuxPlot draws heater use as a 0/1 series.
func renderAuxPlot(houseID string, elapsedHours float64, used []bool) string {
	if len(used) == 0 {
		return ""
	}
	data := make([]float64, len(used))
	for i, on := range used {
		if on {
			data[i] = 1
		}
	}
	return asciigraph.Plot(data,
		asciigraph.Height(4),
		asciigraph.Width(plotWidth),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.Precision(0),
		asciigraph.Caption(spanCaption(houseID+" aux heater on", elapsedHours)),
	)
}

func renderSeriesPlot(caption string, data []float64) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
}
