package weather

import "fmt"

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Lat, c.Lon)
}

// Location is a single geocoding match. Matches keep the order the API
// ranked them in.
type Location struct {
	Name       string            `json:"name"`
	Country    string            `json:"country"`
	State      string            `json:"state,omitempty"`
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
	LocalNames map[string]string `json:"local_names,omitempty"`
}

// Coordinates returns the location's lat/lon pair.
func (l Location) Coordinates() Coordinates {
	return Coordinates{Lat: l.Lat, Lon: l.Lon}
}

// Label formats the location as "Name, CC, State", omitting an empty state.
func (l Location) Label() string {
	if l.State == "" {
		return fmt.Sprintf("%s, %s", l.Name, l.Country)
	}
	return fmt.Sprintf("%s, %s, %s", l.Name, l.Country, l.State)
}

// Snapshot holds current conditions for one place in metric units.
// Timestamps are Unix epoch seconds.
type Snapshot struct {
	Name           string      `json:"name"`
	Country        string      `json:"country"`
	Coordinates    Coordinates `json:"coordinates"`
	Timestamp      int64       `json:"timestamp"`
	Temperature    float64     `json:"temperature"`
	FeelsLike      float64     `json:"feels_like"`
	TempMin        float64     `json:"temp_min"`
	TempMax        float64     `json:"temp_max"`
	Description    string      `json:"description"`
	Icon           string      `json:"icon"`
	Pressure       float64     `json:"pressure"`
	Humidity       int         `json:"humidity"`
	Sunrise        int64       `json:"sunrise"`
	Sunset         int64       `json:"sunset"`
	WindSpeed      float64     `json:"wind_speed"`
	WindDeg        float64     `json:"wind_deg"`
	TimezoneOffset int         `json:"timezone_offset"`
}

// IconURL returns the large OpenWeatherMap icon for the snapshot's condition.
func (s *Snapshot) IconURL() string {
	if s.Icon == "" {
		return ""
	}
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s@4x.png", s.Icon)
}
