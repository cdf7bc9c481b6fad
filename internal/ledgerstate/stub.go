package ledgerstate

import (
	"unicode/utf8"

	"github.com/hyperledger/fabric-chaincode-go/shim"
)

// StubStore adapts the chaincode stub to the Store interface. All reads and
// writes go through the transaction's simulated read/write sets, so the
// platform's commit-time conflict detection applies unchanged.
type StubStore struct {
	stub shim.ChaincodeStubInterface
}

func NewStubStore(stub shim.ChaincodeStubInterface) *StubStore {
	return &StubStore{stub: stub}
}

func (s *StubStore) Get(key string) ([]byte, error) {
	return s.stub.GetState(key)
}

func (s *StubStore) Put(key string, value []byte) error {
	return s.stub.PutState(key, value)
}

func (s *StubStore) Del(key string) error {
	return s.stub.DelState(key)
}

func (s *StubStore) Range(prefix string) ([]KV, error) {
	iter, err := s.stub.GetStateByRange(prefix, prefix+string(utf8.MaxRune))
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []KV
	for iter.HasNext() {
		kv, err := iter.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, KV{Key: kv.Key, Value: kv.Value})
	}
	return out, nil
}
