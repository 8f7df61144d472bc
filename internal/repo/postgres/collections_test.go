package postgres

import (
	"strings"
	"testing"

	"github.com/lodestar-ml/lodestar-go/internal/repo"
)

func TestBuildCollectionListQueryRequiresProjectID(t *testing.T) {
	_, _, err := buildCollectionListQuery(repo.CollectionFilter{})
	if err == nil {
		t.Fatalf("expected error for missing project id")
	}
}

func TestBuildCollectionListQueryIncludesProjectID(t *testing.T) {
	query, args, err := buildCollectionListQuery(repo.CollectionFilter{ProjectID: "proj-123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) == 0 || args[0] != "proj-123" {
		t.Fatalf("expected project id as first arg, got %v", args)
	}
	if !strings.Contains(query, "project_id = $1") {
		t.Fatalf("expected project_id predicate in query, got %s", query)
	}
}

func TestBuildCollectionListQueryWithRunStepDirectionAndLimit(t *testing.T) {
	query, args, err := buildCollectionListQuery(repo.CollectionFilter{
		ProjectID: "proj-123",
		RunID:     "run-1",
		StepName:  "trainer",
		Direction: "output",
		Limit:     25,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d", len(args))
	}
	for _, want := range []string{"run_id = $2", "step_name = $3", "direction = $4", "LIMIT $5"} {
		if !strings.Contains(query, want) {
			t.Fatalf("expected %q in query, got %s", want, query)
		}
	}
}

func TestNewCollectionStoreRequiresDB(t *testing.T) {
	store := NewCollectionStore(nil)
	if store != nil {
		t.Fatalf("NewCollectionStore(nil) should return nil")
	}
}
