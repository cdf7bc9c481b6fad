package ledgerstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemGetAbsent(t *testing.T) {
	m := NewMem()
	v, err := m.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMemPutGetRange(t *testing.T) {
	m := NewMem()
	require.NoError(t, m.Put("BATCH-002", []byte("b")))
	require.NoError(t, m.Put("BATCH-001", []byte("a")))
	require.NoError(t, m.Put("ZONE-001", []byte("z")))

	kvs, err := m.Range("BATCH-")
	require.NoError(t, err)
	require.Len(t, kvs, 2)
	assert.Equal(t, "BATCH-001", kvs[0].Key)
	assert.Equal(t, "BATCH-002", kvs[1].Key)
}

func TestExecuteCommits(t *testing.T) {
	m := NewMem()
	err := m.Execute(func(s Store) error {
		return s.Put("k", []byte("v"))
	})
	require.NoError(t, err)

	v, err := m.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestExecuteReadYourWrites(t *testing.T) {
	m := NewMem()
	err := m.Execute(func(s Store) error {
		if err := s.Put("k", []byte("v")); err != nil {
			return err
		}
		v, err := s.Get("k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), v)
		return nil
	})
	require.NoError(t, err)
}

func TestExecuteConflictOnInterleavedWrite(t *testing.T) {
	m := NewMem()
	require.NoError(t, m.Put("counter", []byte("1")))

	err := m.Execute(func(s Store) error {
		if _, err := s.Get("counter"); err != nil {
			return err
		}
		// Another submitter commits between this transaction's read and its
		// commit.
		require.NoError(t, m.Put("counter", []byte("2")))
		return s.Put("counter", []byte("3"))
	})
	assert.ErrorIs(t, err, ErrConflict)

	v, err := m.Get("counter")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v, "conflicting writes must be discarded")
}

func TestExecuteConflictOnAbsentKeyCreated(t *testing.T) {
	m := NewMem()
	err := m.Execute(func(s Store) error {
		if _, err := s.Get("new"); err != nil {
			return err
		}
		require.NoError(t, m.Put("new", []byte("raced")))
		return s.Put("new", []byte("mine"))
	})
	assert.ErrorIs(t, err, ErrConflict, "reading an absent key still joins the read set")
}

func TestExecuteRetrySucceedsAfterConflict(t *testing.T) {
	m := NewMem()
	require.NoError(t, m.Put("k", []byte("0")))

	raced := false
	err := m.ExecuteRetry(3, func(s Store) error {
		if _, err := s.Get("k"); err != nil {
			return err
		}
		if !raced {
			raced = true
			require.NoError(t, m.Put("k", []byte("other")))
		}
		return s.Put("k", []byte("mine"))
	})
	require.NoError(t, err)

	v, err := m.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("mine"), v)
}

func TestExecuteDelete(t *testing.T) {
	m := NewMem()
	require.NoError(t, m.Put("k", []byte("v")))
	require.NoError(t, m.Execute(func(s Store) error { return s.Del("k") }))

	v, err := m.Get("k")
	require.NoError(t, err)
	assert.Nil(t, v)
}
