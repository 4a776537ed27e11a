package transitdb

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeSeed reads a seed document. Numbers are kept as json.Number so ids like 7 and
// fares like "12.50" reach the graph build unaltered.
func decodeSeed(data []byte) (Dataset, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var dataset Dataset
	if err := dec.Decode(&dataset); err != nil {
		return Dataset{}, fmt.Errorf("error decoding seed data: %w", err)
	}
	if len(dataset.Stops) == 0 {
		return Dataset{}, fmt.Errorf("seed data has no stops")
	}
	return dataset, nil
}
