package sqlite

import (
	"encoding/json"
	"fmt"
)

// The blob column serialization boundary. Every entity enters and leaves the
// data_json column through these two functions, so the format (currently
// JSON) can be swapped for a columnar layout without touching the row code.

func encodeEntity(e any) (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("encode entity: %w", err)
	}
	return string(b), nil
}

func decodeEntity(blob string, into any) error {
	if err := json.Unmarshal([]byte(blob), into); err != nil {
		return fmt.Errorf("decode entity: %w", err)
	}
	return nil
}
