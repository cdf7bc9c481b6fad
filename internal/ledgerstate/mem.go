package ledgerstate

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrConflict is returned by Mem.Execute when a key read by the transaction
// was modified by another transaction that committed first. It mirrors the
// platform's MVCC_READ_CONFLICT: the caller is expected to resubmit.
var ErrConflict = errors.New("ledgerstate: read-set conflict")

type entry struct {
	value   []byte
	version uint64
}

// Mem is an in-memory world state with per-key versioning and optimistic
// transaction execution. Used directly (auto-commit) by unit tests and via
// Execute by tests that exercise the validate-then-commit race.
type Mem struct {
	mu   sync.Mutex
	data map[string]entry
}

func NewMem() *Mem {
	return &Mem{data: map[string]entry{}}
}

func (m *Mem) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), e.value...), nil
}

func (m *Mem) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putLocked(key, value)
	return nil
}

func (m *Mem) Del(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Mem) Range(prefix string) ([]KV, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rangeLocked(prefix), nil
}

func (m *Mem) putLocked(key string, value []byte) {
	e := m.data[key]
	m.data[key] = entry{value: append([]byte(nil), value...), version: e.version + 1}
}

func (m *Mem) rangeLocked(prefix string) []KV {
	var out []KV
	for k, e := range m.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, KV{Key: k, Value: append([]byte(nil), e.value...)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (m *Mem) versionLocked(key string) uint64 {
	return m.data[key].version
}

// Execute runs fn as one transaction. Reads are tracked against the versions
// seen; at commit the read set is validated and, if any read key has since
// changed, the writes are discarded and ErrConflict is returned.
func (m *Mem) Execute(fn func(Store) error) error {
	tx := &memTx{m: m, reads: map[string]uint64{}, writes: map[string][]byte{}, dels: map[string]bool{}}
	if err := fn(tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for key, seen := range tx.reads {
		if m.versionLocked(key) != seen {
			return ErrConflict
		}
	}
	for key, value := range tx.writes {
		m.putLocked(key, value)
	}
	for key := range tx.dels {
		delete(m.data, key)
	}
	return nil
}

// ExecuteRetry retries Execute on ErrConflict up to attempts times.
func (m *Mem) ExecuteRetry(attempts int, fn func(Store) error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = m.Execute(fn)
		if !errors.Is(err, ErrConflict) {
			return err
		}
	}
	return err
}

type memTx struct {
	m      *Mem
	reads  map[string]uint64
	writes map[string][]byte
	dels   map[string]bool
}

func (t *memTx) Get(key string) ([]byte, error) {
	if t.dels[key] {
		return nil, nil
	}
	if v, ok := t.writes[key]; ok {
		return append([]byte(nil), v...), nil
	}

	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if _, seen := t.reads[key]; !seen {
		t.reads[key] = t.m.versionLocked(key)
	}
	e, ok := t.m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), e.value...), nil
}

func (t *memTx) Put(key string, value []byte) error {
	delete(t.dels, key)
	t.writes[key] = append([]byte(nil), value...)
	return nil
}

func (t *memTx) Del(key string) error {
	delete(t.writes, key)
	t.dels[key] = true
	return nil
}

func (t *memTx) Range(prefix string) ([]KV, error) {
	t.m.mu.Lock()
	committed := t.m.rangeLocked(prefix)
	for _, kv := range committed {
		if _, seen := t.reads[kv.Key]; !seen {
			t.reads[kv.Key] = t.m.versionLocked(kv.Key)
		}
	}
	t.m.mu.Unlock()

	merged := map[string][]byte{}
	for _, kv := range committed {
		merged[kv.Key] = kv.Value
	}
	for k, v := range t.writes {
		if strings.HasPrefix(k, prefix) {
			merged[k] = v
		}
	}
	for k := range t.dels {
		delete(merged, k)
	}

	out := make([]KV, 0, len(merged))
	for k, v := range merged {
		out = append(out, KV{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
