package layout

import (
	"encoding/json"
	"fmt"
)

// Direction is a compass heading for arm travel.
type Direction int

// The four arm travel directions.
const (
	North Direction = iota
	South
	East
	West
)

var directionNames = map[Direction]string{
	North: "north",
	South: "south",
	East:  "east",
	West:  "west",
}

var directionValues = map[string]Direction{
	"north": North,
	"south": South,
	"east":  East,
	"west":  West,
}

// String returns the lowercase direction name.
func (d Direction) String() string {
	if s, ok := directionNames[d]; ok {
		return s
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Horizontal reports whether the direction runs along the x axis.
func (d Direction) Horizontal() bool { return d == East || d == West }

// MarshalJSON serializes the direction as its lowercase name.
func (d Direction) MarshalJSON() ([]byte, error) {
	s, ok := directionNames[d]
	if !ok {
		return nil, fmt.Errorf("unknown direction %d", int(d))
	}
	return json.Marshal(s)
}

// UnmarshalJSON parses a lowercase direction name.
func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, ok := directionValues[s]
	if !ok {
		return fmt.Errorf("unknown direction %q", s)
	}
	*d = v
	return nil
}
