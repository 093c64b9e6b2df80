package cart

import (
	"encoding/json"
	"fmt"
)

// Encode serializes entries as the JSON array kept in durable storage
func Encode(entries []Entry) (string, error) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cart: %w", err)
	}
	return string(data), nil
}

// Decode parses a persisted cart. Entries that break the cart invariants are repaired:
// entries without a product id or with quantity < 1 are dropped and duplicate ids are
// merged into the first occurrence. repaired counts the affected entries.
func Decode(data string) (entries []Entry, repaired int, err error) {
	var raw []Entry
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal cart: %w", err)
	}

	entries = make([]Entry, 0, len(raw))
	index := make(map[string]int, len(raw))
	for _, e := range raw {
		if e.Product.ID == "" || e.Quantity < 1 {
			repaired++
			continue
		}
		if i, ok := index[e.Product.ID]; ok {
			entries[i].Quantity += e.Quantity
			repaired++
			continue
		}
		index[e.Product.ID] = len(entries)
		entries = append(entries, e)
	}
	return entries, repaired, nil
}
