package repository

import (
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/storage"
)

// flightIndex is one hand-rolled secondary index: an ordered list of
// flight identifiers stored under a single key. The store has no range
// queries, so every change is a whole-list read-modify-write inside the
// surrounding transaction.
type flightIndex []domain.FlightID

// loadIndex decodes the index under key, treating a missing key as an
// empty index.
func loadIndex(kv storage.KV, key []byte) (flightIndex, error) {
	raw, ok, err := kv.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return flightIndex{}, nil
	}
	var ix flightIndex
	if err := json.Unmarshal(raw, &ix); err != nil {
		return nil, fmt.Errorf("decode index %s: %w", key, err)
	}
	return ix, nil
}

func saveIndex(kv storage.KV, key []byte, ix flightIndex) error {
	raw, err := json.Marshal(ix)
	if err != nil {
		return err
	}
	return kv.Set(key, raw)
}

// removeAll drops every occurrence of id, preserving the relative order
// of the rest, and reports how many entries were dropped.
func (ix flightIndex) removeAll(id domain.FlightID) (flightIndex, int) {
	kept := make(flightIndex, 0, len(ix))
	removed := 0
	for _, entry := range ix {
		if entry == id {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	return kept, removed
}

func loadPassengerList(kv storage.KV, key []byte) ([]domain.PassengerRecord, bool, error) {
	raw, ok, err := kv.Get(key)
	if err != nil || !ok {
		return nil, ok, err
	}
	var list []domain.PassengerRecord
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false, fmt.Errorf("decode passenger list %s: %w", key, err)
	}
	return list, true, nil
}

func savePassengerList(kv storage.KV, key []byte, list []domain.PassengerRecord) error {
	if list == nil {
		list = []domain.PassengerRecord{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return kv.Set(key, raw)
}
