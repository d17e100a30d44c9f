package core

import (
	"testing"

	"annexcore/testutil"
)

// TestCoreReachesStorageThroughInfra forbids importing database or object
// storage clients from the service layer; backends live under internal/infra.
func TestCoreReachesStorageThroughInfra(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.DriverImportForbidden, "use internal/infra backends")
}
