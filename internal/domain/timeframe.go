package domain

import (
	"fmt"
	"strings"
)

// Timeframe selects the window and bar interval for a price history request.
type Timeframe struct {
	Label    string
	Period   string
	Interval string
}

// Timeframes lists the supported chart windows, shortest first.
var Timeframes = []Timeframe{
	{Label: "1D", Period: "1d", Interval: "5m"},
	{Label: "1W", Period: "5d", Interval: "15m"},
	{Label: "1M", Period: "1mo", Interval: "1d"},
	{Label: "1Y", Period: "1y", Interval: "1d"},
	{Label: "5Y", Period: "5y", Interval: "5d"},
	{Label: "MAX", Period: "max", Interval: "1mo"},
}

// DefaultTimeframe is the one-month daily window.
var DefaultTimeframe = Timeframes[2]

// ParseTimeframe looks up a timeframe by its label (case-insensitive).
func ParseTimeframe(label string) (Timeframe, error) {
	for _, tf := range Timeframes {
		if strings.EqualFold(tf.Label, strings.TrimSpace(label)) {
			return tf, nil
		}
	}
	return Timeframe{}, fmt.Errorf("unknown timeframe %q", label)
}

// NextTimeframe returns the timeframe after tf, wrapping around.
func NextTimeframe(tf Timeframe) Timeframe {
	for i, t := range Timeframes {
		if t.Label == tf.Label {
			return Timeframes[(i+1)%len(Timeframes)]
		}
	}
	return DefaultTimeframe
}
