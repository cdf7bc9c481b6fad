package contract

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"go.uber.org/zap"

	"github.com/ayurtrace/ayurtrace/internal/ledgerstate"
	"github.com/ayurtrace/ayurtrace/internal/provenance"
)

// ProvenanceContract exposes the batch state machine and its read surface.
type ProvenanceContract struct {
	contractapi.Contract
	log *zap.Logger
}

func NewProvenanceContract(log *zap.Logger) *ProvenanceContract {
	return &ProvenanceContract{log: log.Named("provenance")}
}

func (c *ProvenanceContract) service(ctx contractapi.TransactionContextInterface) provenance.Service {
	return provenance.NewService(ledgerstate.NewStubStore(ctx.GetStub()))
}

// CreateRecord opens a batch from an already-validated collection event.
// Callers wanting the rule checks bundled use HarvestContract.SubmitHarvest.
func (c *ProvenanceContract) CreateRecord(ctx contractapi.TransactionContextInterface, batchID, collectionJSON string) (*provenance.ProvenanceRecord, error) {
	id, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	var ev provenance.CollectionEvent
	if err := unmarshalArg(collectionJSON, "collectionEvent", &ev); err != nil {
		return nil, err
	}
	rec, err := c.service(ctx).CreateRecord(id, batchID, ev)
	if err != nil {
		return nil, err
	}
	emitEvent(ctx, c.log, EventBatchCreated, map[string]string{
		"batchId":  rec.BatchID,
		"herbType": ev.HerbType,
		"farmerId": ev.FarmerID,
	})
	txLogger(ctx, c.log, id).Info("batch created", zap.String("batchId", rec.BatchID))
	return rec, nil
}

// AppendProcessingStep adds a transformation step to a batch.
func (c *ProvenanceContract) AppendProcessingStep(ctx contractapi.TransactionContextInterface, batchID, stepJSON string) (*provenance.ProvenanceRecord, error) {
	id, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	var step provenance.ProcessingStep
	if err := unmarshalArg(stepJSON, "step", &step); err != nil {
		return nil, err
	}
	rec, err := c.service(ctx).AppendProcessingStep(id, batchID, step)
	if err != nil {
		return nil, err
	}
	txLogger(ctx, c.log, id).Info("processing step appended",
		zap.String("batchId", batchID), zap.String("stepId", step.StepID))
	return rec, nil
}

// AppendTestResult attaches a quality test outcome to a batch.
func (c *ProvenanceContract) AppendTestResult(ctx contractapi.TransactionContextInterface, batchID, outcomeJSON string) (*provenance.ProvenanceRecord, error) {
	id, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	var outcome provenance.TestOutcome
	if err := unmarshalArg(outcomeJSON, "testOutcome", &outcome); err != nil {
		return nil, err
	}
	rec, err := c.service(ctx).AppendTestResult(id, batchID, outcome)
	if err != nil {
		return nil, err
	}
	txLogger(ctx, c.log, id).Info("test result appended",
		zap.String("batchId", batchID),
		zap.String("testId", outcome.TestID),
		zap.String("status", rec.CurrentStatus))
	return rec, nil
}

// FinalizePackaging packages a Tested-Pass batch and binds its trace code.
func (c *ProvenanceContract) FinalizePackaging(ctx contractapi.TransactionContextInterface, batchID, distributionJSON string) (*provenance.ProvenanceRecord, error) {
	id, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	var info provenance.DistributionInfo
	if err := unmarshalArg(distributionJSON, "distributionInfo", &info); err != nil {
		return nil, err
	}
	rec, err := c.service(ctx).FinalizePackaging(id, batchID, info)
	if err != nil {
		return nil, err
	}
	txLogger(ctx, c.log, id).Info("batch packaged",
		zap.String("batchId", batchID),
		zap.String("traceCode", rec.Distribution.TraceCode))
	return rec, nil
}

// UpdateDistributionStatus applies a post-packaging transition; a recall
// emits BatchRecalled.
func (c *ProvenanceContract) UpdateDistributionStatus(ctx contractapi.TransactionContextInterface, batchID, newStatus string) (*provenance.ProvenanceRecord, error) {
	id, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := c.service(ctx).UpdateDistributionStatus(id, batchID, newStatus)
	if err != nil {
		return nil, err
	}
	if newStatus == provenance.StatusRecalled {
		emitEvent(ctx, c.log, EventBatchRecalled, map[string]string{
			"batchId":    batchID,
			"recalledBy": id.MSPID,
		})
	}
	txLogger(ctx, c.log, id).Info("distribution status updated",
		zap.String("batchId", batchID), zap.String("status", newStatus))
	return rec, nil
}

// GetBatch returns the record with its derived timeline and completion score.
func (c *ProvenanceContract) GetBatch(ctx contractapi.TransactionContextInterface, batchID string) (*provenance.BatchReport, error) {
	return c.service(ctx).GetBatch(batchID)
}

// GetByTraceCode resolves a public trace code to its batch report.
func (c *ProvenanceContract) GetByTraceCode(ctx contractapi.TransactionContextInterface, traceCode string) (*provenance.BatchReport, error) {
	return c.service(ctx).GetByTraceCode(traceCode)
}

// ListByFarmer returns a farmer's batches, newest harvest first.
func (c *ProvenanceContract) ListByFarmer(ctx contractapi.TransactionContextInterface, farmerID string) ([]provenance.ProvenanceRecord, error) {
	return c.service(ctx).ListByFarmer(farmerID)
}

// ListByStatus returns batches in a status, most recently updated first.
func (c *ProvenanceContract) ListByStatus(ctx contractapi.TransactionContextInterface, status string) ([]provenance.ProvenanceRecord, error) {
	return c.service(ctx).ListByStatus(status)
}
