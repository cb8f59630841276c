// Package format converts raw OpenWeatherMap fields into display strings.
// All functions are pure and never fail.
package format

import (
	"fmt"
	"math"
	"reflect"
	"time"
)

var directions = [8]string{
	"North",
	"North East",
	"East",
	"South East",
	"South",
	"South West",
	"West",
	"North West",
}

// Round rounds half up, so -0.5 becomes 0 and 2.5 becomes 3.
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// TimeOfDay renders Unix epoch seconds as local "HH:MM" (24-hour).
func TimeOfDay(epochSeconds int64) string {
	return TimeOfDayIn(epochSeconds, time.Local)
}

// TimeOfDayIn renders Unix epoch seconds as "HH:MM" in loc.
func TimeOfDayIn(epochSeconds int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t := time.Unix(epochSeconds, 0).In(loc)
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// DateTime renders Unix epoch seconds as local "02 January, 15:04".
func DateTime(epochSeconds int64) string {
	return DateTimeIn(epochSeconds, time.Local)
}

// DateTimeIn is DateTime in loc.
func DateTimeIn(epochSeconds int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(epochSeconds, 0).In(loc).Format("02 January, 15:04")
}

// CompassDirection maps degrees to one of eight 45° sectors, starting with
// North and proceeding clockwise. Any finite input is accepted; non-finite
// input yields "".
func CompassDirection(degrees float64) string {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return ""
	}
	sector := math.Floor(degrees/45+0.5)
	idx := int(math.Mod(math.Mod(sector, 8)+8, 8))
	return directions[idx]
}

// IsEmpty reports whether v has no keys: nil values, zero-length maps,
// slices, arrays, strings and channels, and structs without fields.
// Values that are not collections at all (numbers, booleans, functions)
// are also reported as empty. Pointers and interfaces are followed.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	return isEmptyValue(reflect.ValueOf(v))
}

func isEmptyValue(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return isEmptyValue(rv.Elem())
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String, reflect.Chan:
		return rv.Len() == 0
	case reflect.Struct:
		return rv.NumField() == 0
	default:
		return true
	}
}
