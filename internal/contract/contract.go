// Package contract exposes the domain services as Fabric chaincode. Complex
// arguments arrive as JSON-encoded strings; results are JSON-serializable
// structs. The contracts hold no state of their own: every invocation adapts
// the transaction's stub to the ledgerstate seam and builds the services on
// top of it, so all reads and writes stay inside the transaction's simulated
// read/write sets.
package contract

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"go.uber.org/zap"

	"github.com/ayurtrace/ayurtrace/internal/capability"
)

// Chaincode events external subscribers listen for.
const (
	EventBatchCreated        = "BatchCreated"
	EventQualityTestRecorded = "QualityTestRecorded"
	EventQualityAlert        = "QualityAlert"
	EventBatchRecalled       = "BatchRecalled"
)

func callerIdentity(ctx contractapi.TransactionContextInterface) (capability.Identity, error) {
	mspid, err := ctx.GetClientIdentity().GetMSPID()
	if err != nil {
		return capability.Identity{}, fmt.Errorf("read client MSP ID: %w", err)
	}
	return capability.Identity{MSPID: mspid}, nil
}

func unmarshalArg(arg, name string, v any) error {
	if err := json.Unmarshal([]byte(arg), v); err != nil {
		return fmt.Errorf("decode %s argument: %w", name, err)
	}
	return nil
}

// emitEvent serializes the payload and sets it as the transaction's event.
// Event failures are logged, not returned: a missed notification must not
// roll back a committed state change.
func emitEvent(ctx contractapi.TransactionContextInterface, log *zap.Logger, name string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Error("marshal event payload", zap.String("event", name), zap.Error(err))
		return
	}
	if err := ctx.GetStub().SetEvent(name, raw); err != nil {
		log.Error("set event", zap.String("event", name), zap.Error(err))
	}
}

func txLogger(ctx contractapi.TransactionContextInterface, log *zap.Logger, id capability.Identity) *zap.Logger {
	return log.With(
		zap.String("txId", ctx.GetStub().GetTxID()),
		zap.String("mspId", id.MSPID),
	)
}
