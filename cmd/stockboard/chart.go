package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Block elements for sub-character vertical resolution (1/8 to 8/8).
var blockChars = [9]rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// renderAreaChart draws data as a filled area chart of width x height cells.
// Columns at or above baseline use aboveColor, the rest belowColor.
func renderAreaChart(data []float64, baseline float64, width, height int, aboveColor, belowColor lipgloss.Color) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	cols := downsample(data, width)

	minVal, maxVal := cols[0], cols[0]
	for _, v := range cols {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	totalLevels := height * 8
	valRange := maxVal - minVal
	if valRange == 0 {
		valRange = 1
	}

	// At least one level per column so flat stretches stay visible.
	scaled := make([]int, len(cols))
	for i, v := range cols {
		s := int((v-minVal)/valRange*float64(totalLevels-1)) + 1
		if s > totalLevels {
			s = totalLevels
		}
		scaled[i] = s
	}

	above := lipgloss.NewStyle().Foreground(aboveColor)
	below := lipgloss.NewStyle().Foreground(belowColor)

	rows := make([]string, height)
	for row := 0; row < height; row++ {
		rowBottom := (height - 1 - row) * 8

		var sb strings.Builder
		for col := range scaled {
			fill := scaled[col] - rowBottom
			if fill <= 0 {
				sb.WriteRune(' ')
				continue
			}
			if fill > 8 {
				fill = 8
			}
			style := above
			if cols[col] < baseline {
				style = below
			}
			sb.WriteString(style.Render(string(blockChars[fill])))
		}
		rows[row] = sb.String()
	}
	return strings.Join(rows, "\n")
}

// downsample reduces data to n points by averaging buckets.
func downsample(data []float64, n int) []float64 {
	if len(data) <= n {
		return append([]float64(nil), data...)
	}
	out := make([]float64, n)
	bucket := float64(len(data)) / float64(n)
	for i := 0; i < n; i++ {
		start := int(float64(i) * bucket)
		end := int(float64(i+1) * bucket)
		if end > len(data) {
			end = len(data)
		}
		if end <= start {
			end = start + 1
		}
		sum := 0.0
		for j := start; j < end; j++ {
			sum += data[j]
		}
		out[i] = sum / float64(end-start)
	}
	return out
}
