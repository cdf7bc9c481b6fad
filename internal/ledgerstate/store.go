// Package ledgerstate abstracts the key-value world state the contracts run
// against. On a network the store is backed by the chaincode stub; tests use
// the in-memory implementation and local tooling uses the SQLite one.
package ledgerstate

// KV is one key-value pair returned by a range scan.
type KV struct {
	Key   string
	Value []byte
}

// Store is the world-state surface the domain services are written against.
// Get returns (nil, nil) for an absent key. Range returns all pairs whose key
// starts with prefix, ordered by key.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Del(key string) error
	Range(prefix string) ([]KV, error)
}
