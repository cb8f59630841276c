// Package view renders pipeline state as plain text lines.
package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valpere/pogoda/internal/pipeline"
	"github.com/valpere/pogoda/pkg/format"
	"github.com/valpere/pogoda/pkg/weather"
)

const (
	LoadingText    = "Loading..."
	RefreshingText = "Refreshing..."
	SearchPrompt   = "Search place"
)

// Renderer formats times in a fixed zone; a nil zone means local time.
type Renderer struct {
	loc *time.Location
}

func NewRenderer(loc *time.Location) *Renderer {
	return &Renderer{loc: loc}
}

// WindLine renders "Wind speed: N m/s", adding " from <direction>" only when
// the rounded speed is not zero.
func WindLine(speed, deg float64) string {
	rounded := format.Round(speed)
	line := fmt.Sprintf("Wind speed: %d m/s", rounded)
	if rounded != 0 {
		line += " from " + format.CompassDirection(deg)
	}
	return line
}

// SuggestionLines numbers the suggestions from 1.
func SuggestionLines(locations []weather.Location) []string {
	lines := make([]string, 0, len(locations))
	for i, loc := range locations {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, loc.Label()))
	}
	return lines
}

// WeatherCard renders a snapshot. Temperatures and wind speed are rounded
// for display only.
func (r *Renderer) WeatherCard(s *weather.Snapshot) []string {
	if s == nil {
		return nil
	}

	lines := []string{
		fmt.Sprintf("%s, %s", s.Name, s.Country),
		format.DateTimeIn(s.Timestamp, r.loc),
		fmt.Sprintf("%d°", format.Round(s.Temperature)),
		fmt.Sprintf("Day %d°↑ • Night %d°↓", format.Round(s.TempMax), format.Round(s.TempMin)),
		fmt.Sprintf("Feels like: %d°", format.Round(s.FeelsLike)),
		fmt.Sprintf("Pressure: %s hPa", strconv.FormatFloat(s.Pressure, 'f', -1, 64)),
	}
	if s.Description != "" {
		lines = append(lines, s.Description)
	}
	if icon := s.IconURL(); icon != "" {
		lines = append(lines, "Icon: "+icon)
	}

	return append(lines,
		"Sunrise: "+format.TimeOfDayIn(s.Sunrise, r.loc),
		"Sunset: "+format.TimeOfDayIn(s.Sunset, r.loc),
		WindLine(s.WindSpeed, s.WindDeg),
	)
}

// Screen renders the whole state: input line, suggestions, error, then the
// loading indicator or the weather card.
func (r *Renderer) Screen(state pipeline.State) string {
	var lines []string

	input := state.Query
	if input == "" {
		input = SearchPrompt
	}
	if state.Focused {
		input = "> " + input
	}
	lines = append(lines, "["+input+"]")

	if !format.IsEmpty(state.Suggestions) {
		lines = append(lines, SuggestionLines(state.Suggestions)...)
	}
	if state.Refreshing {
		lines = append(lines, RefreshingText)
	}
	if state.Error != "" {
		lines = append(lines, state.Error)
	}

	switch {
	case state.Loading:
		lines = append(lines, LoadingText)
	case state.Weather != nil:
		lines = append(lines, "")
		lines = append(lines, r.WeatherCard(state.Weather)...)
	}

	return strings.Join(lines, "\n")
}
