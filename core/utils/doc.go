// Package utils provides helpers for working with loosely typed JSON values
// (map[string]any / []any) as they come out of persisted snapshots.
package utils
