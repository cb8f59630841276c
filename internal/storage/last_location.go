package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/valpere/pogoda/pkg/weather"
)

// ErrInvalidCoordinates is returned when the persisted value cannot be
// decoded into a complete coordinate pair.
var ErrInvalidCoordinates = errors.New("storage: invalid persisted coordinates")

// LastLocation stores the last selected coordinates as JSON under one key.
type LastLocation struct {
	store Store
	key   string
}

func NewLastLocation(store Store, key string) *LastLocation {
	return &LastLocation{store: store, key: key}
}

// Key returns the storage key.
func (l *LastLocation) Key() string {
	return l.key
}

// Load returns ErrNotFound when nothing was saved yet and
// ErrInvalidCoordinates when the stored value is unreadable or lacks lat/lon.
func (l *LastLocation) Load(ctx context.Context) (weather.Coordinates, error) {
	raw, err := l.store.Get(ctx, l.key)
	if err != nil {
		return weather.Coordinates{}, err
	}

	var stored struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return weather.Coordinates{}, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}
	if stored.Lat == nil || stored.Lon == nil {
		return weather.Coordinates{}, ErrInvalidCoordinates
	}

	return weather.Coordinates{Lat: *stored.Lat, Lon: *stored.Lon}, nil
}

func (l *LastLocation) Save(ctx context.Context, coords weather.Coordinates) error {
	payload, err := json.Marshal(coords)
	if err != nil {
		return fmt.Errorf("failed to encode coordinates: %w", err)
	}
	return l.store.Set(ctx, l.key, string(payload))
}
