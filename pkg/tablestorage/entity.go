package tablestorage

import (
	"fmt"

	"github.com/tgedr/connectors/pkg/connector"
)

const (
	KeyPartition = "PartitionKey"
	KeyRow       = "RowKey"
)

// Entity is a table row: string keys to scalar values. PartitionKey and
// RowKey together identify it.
type Entity map[string]any

// PartitionKey returns the entity's partition key, or "" when absent or
// not a string.
func (e Entity) PartitionKey() string {
	s, _ := e[KeyPartition].(string)
	return s
}

// RowKey returns the entity's row key, or "" when absent or not a string.
func (e Entity) RowKey() string {
	s, _ := e[KeyRow].(string)
	return s
}

// Validate checks that both identity keys are present non-empty strings.
// The service would reject such an entity anyway; failing here saves the
// round trip and gives a clearer error.
func (e Entity) Validate() error {
	for _, k := range []string{KeyPartition, KeyRow} {
		v, ok := e[k]
		if !ok {
			return &connector.ValidationError{Field: k, Reason: "missing"}
		}
		s, ok := v.(string)
		if !ok {
			return &connector.ValidationError{Field: k, Reason: fmt.Sprintf("must be a string, got %T", v)}
		}
		if s == "" {
			return &connector.ValidationError{Field: k, Reason: "empty"}
		}
	}
	return nil
}
