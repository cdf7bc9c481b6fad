package main

import (
	"fmt"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayurtrace/ayurtrace/internal/config"
	"github.com/ayurtrace/ayurtrace/internal/contract"
)

func newServeCmd(cfg config.Config, log *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the chaincode, in-process or as an external chaincode server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfg, log)
		},
	}
}

func serve(cfg config.Config, log *zap.Logger) error {
	cc, err := contractapi.NewChaincode(
		contract.NewZoneContract(log),
		contract.NewHarvestContract(log),
		contract.NewQualityContract(log),
		contract.NewProvenanceContract(log),
	)
	if err != nil {
		return fmt.Errorf("create chaincode: %w", err)
	}

	if cfg.ExternalServer() {
		server := &shim.ChaincodeServer{
			CCID:    cfg.ChaincodeID,
			Address: cfg.ChaincodeAddress,
			CC:      cc,
			TLSProps: shim.TLSProperties{
				Disabled: cfg.TLSDisabled,
			},
		}
		log.Info("starting external chaincode server",
			zap.String("ccid", cfg.ChaincodeID),
			zap.String("address", cfg.ChaincodeAddress))
		return server.Start()
	}

	log.Info("starting in-process chaincode")
	return cc.Start()
}
