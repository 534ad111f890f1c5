// Package store is the persistence adapter: named slots holding serialized
// collections. The ledger and auth services never see the backend.
package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Slot keys
const (
	KeyUsers        = "users"        // []domain.User
	KeyAccounts     = "accounts"     // []domain.Account
	KeyTransactions = "transactions" // []domain.Transaction
	KeyCurrentUser  = "currentUser"  // *domain.Actor, null when logged out
)

// Keys lists every slot the application uses
var Keys = []string{KeyUsers, KeyAccounts, KeyTransactions, KeyCurrentUser}

// Slot is one key and the value to serialize into it
type Slot struct {
	Key   string
	Value any
}

// Store loads and saves serialized slots.
//
// Load decodes the slot into dest and reports whether it existed. Save writes
// all slots atomically: either every slot is replaced or none is.
type Store interface {
	Load(ctx context.Context, key string, dest any) (bool, error)
	Save(ctx context.Context, slots ...Slot) error
}

// Encode serializes a slot value
func Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode slot: %w", err)
	}
	return b, nil
}

// Decode deserializes a slot blob into dest
func Decode(blob []byte, dest any) error {
	if err := json.Unmarshal(blob, dest); err != nil {
		return fmt.Errorf("decode slot: %w", err)
	}
	return nil
}

// encodeAll serializes every slot up front so a failure leaves nothing written
func encodeAll(slots []Slot) (map[string][]byte, error) {
	out := make(map[string][]byte, len(slots))
	for _, s := range slots {
		b, err := Encode(s.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Key, err)
		}
		out[s.Key] = b
	}
	return out, nil
}
