// Package catalogtest opens throwaway catalogs for tests.
package catalogtest

import (
	"testing"

	"github.com/llehouerou/crate/internal/catalog"
	"github.com/llehouerou/crate/internal/db"
)

// New returns an in-memory catalog closed at the end of the test.
func New(t *testing.T) *catalog.Catalog {
	t.Helper()

	sqlDB, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	c, err := catalog.New(sqlDB)
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to init catalog: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}
