package migrations_test

import (
	"testing"

	"github.com/Abraxas-365/fittsee/pkg/migrations"
)

func TestVersionsAreUniqueAndOrdered(t *testing.T) {
	seen := make(map[string]bool)
	prev := ""
	for _, m := range migrations.All {
		if seen[m.Version] {
			t.Errorf("duplicate version %s", m.Version)
		}
		seen[m.Version] = true
		if m.Version <= prev {
			t.Errorf("version %s is not after %s", m.Version, prev)
		}
		prev = m.Version
		if len(m.Statements) == 0 {
			t.Errorf("migration %s has no statements", m.Name)
		}
	}
}
