package pipeline

import (
	"maps"

	"github.com/valpere/pogoda/pkg/weather"
)

// Phase is the pipeline's position in the search-and-fetch cycle.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseSearching        Phase = "searching"
	PhaseSuggestionsReady Phase = "suggestionsReady"
	PhaseFetchingWeather  Phase = "fetchingWeather"
	PhaseWeatherReady     Phase = "weatherReady"
	PhaseError            Phase = "error"
)

// State is the complete pipeline state. Values handed out by State and to
// subscribers are deep copies.
type State struct {
	Phase       Phase                `json:"phase"`
	Query       string               `json:"query"`
	Suggestions []weather.Location   `json:"suggestions"`
	Coordinates *weather.Coordinates `json:"coordinates,omitempty"`
	Weather     *weather.Snapshot    `json:"weather,omitempty"`
	Loading     bool                 `json:"loading"`
	Refreshing  bool                 `json:"refreshing"`
	Error       string               `json:"error,omitempty"`
	Focused     bool                 `json:"focused"`
}

func (s State) clone() State {
	out := s
	if s.Suggestions != nil {
		out.Suggestions = make([]weather.Location, len(s.Suggestions))
		for i, loc := range s.Suggestions {
			loc.LocalNames = maps.Clone(loc.LocalNames)
			out.Suggestions[i] = loc
		}
	}
	if s.Coordinates != nil {
		c := *s.Coordinates
		out.Coordinates = &c
	}
	if s.Weather != nil {
		w := *s.Weather
		out.Weather = &w
	}
	return out
}
