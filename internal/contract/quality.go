package contract

import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"go.uber.org/zap"

	"github.com/ayurtrace/ayurtrace/internal/ledgerstate"
	"github.com/ayurtrace/ayurtrace/internal/quality"
)

// QualityContract exposes the lab registry, standards and test submission.
type QualityContract struct {
	contractapi.Contract
	log *zap.Logger
}

func NewQualityContract(log *zap.Logger) *QualityContract {
	return &QualityContract{log: log.Named("quality")}
}

func (c *QualityContract) service(ctx contractapi.TransactionContextInterface) quality.Service {
	return quality.NewService(ledgerstate.NewStubStore(ctx.GetStub()))
}

// SubmitTest evaluates and seals a lab result. A Fail emits a QualityAlert
// event alongside the always-emitted QualityTestRecorded.
func (c *QualityContract) SubmitTest(ctx contractapi.TransactionContextInterface, testJSON string) (*quality.QualityTestRecord, error) {
	id, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	var rec quality.QualityTestRecord
	if err := unmarshalArg(testJSON, "test", &rec); err != nil {
		return nil, err
	}
	sealed, err := c.service(ctx).SubmitTest(id, rec)
	if err != nil {
		return nil, err
	}

	emitEvent(ctx, c.log, EventQualityTestRecorded, map[string]string{
		"testId":        sealed.TestID,
		"batchId":       sealed.BatchID,
		"overallResult": sealed.OverallResult,
	})
	if sealed.OverallResult == quality.ResultFail {
		emitEvent(ctx, c.log, EventQualityAlert, map[string]any{
			"testId":     sealed.TestID,
			"batchId":    sealed.BatchID,
			"labId":      sealed.LabID,
			"violations": sealed.Result.Violations,
		})
	}
	txLogger(ctx, c.log, id).Info("quality test recorded",
		zap.String("testId", sealed.TestID),
		zap.String("batchId", sealed.BatchID),
		zap.String("overallResult", sealed.OverallResult))
	return sealed, nil
}

// GetTest returns a stored test record.
func (c *QualityContract) GetTest(ctx contractapi.TransactionContextInterface, testID string) (*quality.QualityTestRecord, error) {
	return c.service(ctx).GetTest(testID)
}

// VerifyAuthenticity recomputes a stored test's integrity hash.
func (c *QualityContract) VerifyAuthenticity(ctx contractapi.TransactionContextInterface, testID string) (*quality.AuthenticityCheck, error) {
	check, err := c.service(ctx).VerifyAuthenticity(testID)
	if err != nil {
		return nil, err
	}
	if !check.Authentic {
		c.log.Warn("integrity hash mismatch",
			zap.String("testId", testID),
			zap.String("storedHash", check.StoredHash),
			zap.String("computedHash", check.ComputedHash))
	}
	return &check, nil
}

// RegisterLab adds or replaces a lab certification. Regulator only.
func (c *QualityContract) RegisterLab(ctx contractapi.TransactionContextInterface, labJSON string) (*quality.LabCertification, error) {
	id, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	var lab quality.LabCertification
	if err := unmarshalArg(labJSON, "lab", &lab); err != nil {
		return nil, err
	}
	registered, err := c.service(ctx).RegisterLab(id, lab)
	if err != nil {
		return nil, err
	}
	txLogger(ctx, c.log, id).Info("lab registered", zap.String("labId", registered.LabID))
	return registered, nil
}

// SetLabActive toggles a lab certification. Regulator only.
func (c *QualityContract) SetLabActive(ctx contractapi.TransactionContextInterface, labID string, active bool) (*quality.LabCertification, error) {
	id, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	return c.service(ctx).SetLabActive(id, labID, active)
}

// UpdateStandards installs a herb's bound set ("DEFAULT" for the fallback).
// Regulator only.
func (c *QualityContract) UpdateStandards(ctx contractapi.TransactionContextInterface, standardsJSON string) (*quality.QualityStandardSet, error) {
	id, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	var std quality.QualityStandardSet
	if err := unmarshalArg(standardsJSON, "standards", &std); err != nil {
		return nil, err
	}
	updated, err := c.service(ctx).UpdateStandards(id, std)
	if err != nil {
		return nil, err
	}
	txLogger(ctx, c.log, id).Info("standards updated", zap.String("herbType", updated.HerbType))
	return updated, nil
}

// GetStandards resolves the effective bound set for a herb.
func (c *QualityContract) GetStandards(ctx contractapi.TransactionContextInterface, herbType string) (*quality.QualityStandardSet, error) {
	return c.service(ctx).GetStandards(herbType)
}
