package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayurtrace/ayurtrace/internal/lederr"
)

func TestRequireAllows(t *testing.T) {
	id := Identity{MSPID: Regulator}
	require.NoError(t, Require(id, Regulator))
	require.NoError(t, Require(id, Lab, Regulator))
}

func TestRequireDenies(t *testing.T) {
	id := Identity{MSPID: Farmer}
	err := Require(id, Regulator)
	require.Error(t, err)
	assert.True(t, lederr.IsPermission(err))

	var perm lederr.PermissionError
	require.ErrorAs(t, err, &perm)
	assert.Equal(t, Farmer, perm.MSPID)
	assert.Equal(t, Regulator, perm.Capability)
}
