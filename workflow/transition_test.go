package workflow

import (
	"testing"

	"github.com/assetflow/assetflow_backend/models"
)

func TestCanTransitionTable(t *testing.T) {
	allowed := map[[2]models.StatusName]bool{
		{models.StatusInStock, models.StatusAvailable}:     true,
		{models.StatusInStock, models.StatusInUse}:         true,
		{models.StatusInStock, models.StatusInMaintenance}: true,
		{models.StatusInStock, models.StatusWrittenOff}:    true,

		{models.StatusAvailable, models.StatusInStock}:       true,
		{models.StatusAvailable, models.StatusInUse}:         true,
		{models.StatusAvailable, models.StatusInMaintenance}: true,
		{models.StatusAvailable, models.StatusWrittenOff}:    true,

		{models.StatusInUse, models.StatusAvailable}:     true,
		{models.StatusInUse, models.StatusInMaintenance}: true,
		{models.StatusInUse, models.StatusWrittenOff}:    true,

		{models.StatusInMaintenance, models.StatusInStock}:    true,
		{models.StatusInMaintenance, models.StatusAvailable}:  true,
		{models.StatusInMaintenance, models.StatusWrittenOff}: true,
	}

	for _, from := range models.AllStatusNames() {
		for _, to := range models.AllStatusNames() {
			want := allowed[[2]models.StatusName{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%q, %q) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestWrittenOffIsTerminal(t *testing.T) {
	for _, to := range models.AllStatusNames() {
		if CanTransition(models.StatusWrittenOff, to) {
			t.Errorf("Written off must be terminal, got transition to %q", to)
		}
	}
}

func TestSelfTransitionsNotAllowed(t *testing.T) {
	for _, s := range models.AllStatusNames() {
		if CanTransition(s, s) {
			t.Errorf("self transition allowed for %q", s)
		}
	}
}
