package migrate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"travel-ops/core/utils"
)

// VersionKey is the snapshot field holding the schema version.
const VersionKey = "schemaVersion"

// State is a decoded snapshot: arbitrary domain collections plus VersionKey.
type State map[string]any

// Version returns the stored schema version, or 0 when it is absent or not a
// non-negative integer.
func (s State) Version() int {
	v, ok := utils.NonNegativeInt(s[VersionKey])
	if !ok {
		return 0
	}
	return v
}

// Clone returns a shallow copy of s.
func (s State) Clone() State {
	if s == nil {
		return State{}
	}
	return State(utils.CloneMap(s))
}

// Decode parses a snapshot blob. Numbers are kept as json.Number so that
// re-encoding an untouched snapshot reproduces its values exactly. An empty blob
// or a JSON null decodes to an empty state.
func Decode(data []byte) (State, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return State{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var state State
	if err := dec.Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if state == nil {
		state = State{}
	}
	return state, nil
}

// Encode serializes the snapshot.
func (s State) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}
