// Package capability centralizes the coarse-grained authorization check.
// A capability is the caller's organizational membership label (MSP ID on a
// network); every mutating contract operation names the capabilities allowed
// to invoke it and calls Require once, instead of repeating the comparison
// inline.
package capability

import "github.com/ayurtrace/ayurtrace/internal/lederr"

// Capability labels known to the network.
const (
	Regulator    = "RegulatorMSP"
	Farmer       = "FarmerMSP"
	Lab          = "LabMSP"
	Processor    = "ProcessorMSP"
	Manufacturer = "ManufacturerMSP"
)

// Identity is the submitting party as reported by the ledger platform.
type Identity struct {
	MSPID string
}

// Has reports whether the identity holds the capability.
func (id Identity) Has(cap string) bool {
	return id.MSPID == cap
}

// Require returns a PermissionError unless the identity holds one of the
// given capabilities. Read operations never call this.
func Require(id Identity, caps ...string) error {
	for _, c := range caps {
		if id.Has(c) {
			return nil
		}
	}
	want := ""
	if len(caps) > 0 {
		want = caps[0]
		for _, c := range caps[1:] {
			want += "|" + c
		}
	}
	return lederr.PermissionError{Capability: want, MSPID: id.MSPID}
}
