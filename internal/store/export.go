package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type exportData struct {
	Meta        RunMeta   `json:"meta"`
	Times       []float64 `json:"times"`
	Populations []float64 `json:"populations"`
}

// ExportJSON writes a run and its trajectory as indented JSON.
func ExportJSON(path string, meta RunMeta, times, pops []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData{Meta: meta, Times: times, Populations: pops})
}

// ExportJSONStdout writes a run and its trajectory to stdout as indented JSON.
func ExportJSONStdout(meta RunMeta, times, pops []float64) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData{Meta: meta, Times: times, Populations: pops})
}

// ExportCSV writes a trajectory as time,population rows with a header.
func ExportCSV(path string, times, pops []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"time", "population"}); err != nil {
		return err
	}
	for i := range times {
		row := []string{
			strconv.FormatFloat(times[i], 'f', 6, 64),
			strconv.FormatFloat(pops[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// TrajectorySVG renders a population trajectory as an SVG polyline.
// The vertical axis is fixed to [0, 1] so plots of different pulses
// are directly comparable.
func TrajectorySVG(times, pops []float64, width, height int, strokeColor string) string {
	if len(times) < 2 || len(times) != len(pops) {
		return ""
	}

	minT, maxT := times[0], times[len(times)-1]
	rangeT := maxT - minT
	if rangeT == 0 {
		rangeT = 1
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i := range times {
		x := (times[i] - minT) / rangeT * float64(width)
		y := float64(height) * (1 - pops[i])

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// ExportSVG writes a trajectory plot to an SVG file.
func ExportSVG(path string, times, pops []float64, width, height int) error {
	svg := TrajectorySVG(times, pops, width, height, "#00ff00")
	if svg == "" {
		return fmt.Errorf("store: trajectory too short to plot")
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
