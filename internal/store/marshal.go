package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/pentagram/internal/db"
)

// marshalCensus converts a census to JSON TEXT for storage.
func marshalCensus(census []db.TableCensus) (string, error) {
	if census == nil {
		census = []db.TableCensus{}
	}
	data, err := json.Marshal(census)
	if err != nil {
		return "", fmt.Errorf("marshal census: %w", err)
	}
	return string(data), nil
}

// unmarshalCensus parses JSON TEXT to a census.
func unmarshalCensus(data string) ([]db.TableCensus, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var census []db.TableCensus
	if err := json.Unmarshal([]byte(data), &census); err != nil {
		return nil, fmt.Errorf("unmarshal census: %w", err)
	}
	return census, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
