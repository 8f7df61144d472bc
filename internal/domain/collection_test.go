package domain

import "testing"

func validRecord() CollectionRecord {
	return CollectionRecord{
		ID:        "col-1",
		ProjectID: "proj-1",
		RunID:     "run-1",
		StepName:  "trainer",
		Direction: DirectionOutput,
		Payload:   []byte(`{}`),
	}
}

func TestCollectionRecordValidate(t *testing.T) {
	if err := validRecord().Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}
}

func TestCollectionRecordValidate_RequiresFields(t *testing.T) {
	mutations := map[string]func(*CollectionRecord){
		"id":        func(r *CollectionRecord) { r.ID = " " },
		"project":   func(r *CollectionRecord) { r.ProjectID = "" },
		"run":       func(r *CollectionRecord) { r.RunID = "" },
		"step":      func(r *CollectionRecord) { r.StepName = "" },
		"direction": func(r *CollectionRecord) { r.Direction = "sideways" },
		"payload":   func(r *CollectionRecord) { r.Payload = nil },
	}
	for name, mutate := range mutations {
		record := validRecord()
		mutate(&record)
		if err := record.Validate(); err == nil {
			t.Fatalf("Validate() expected error for missing %s", name)
		}
	}
}

func TestArtifactSetClone(t *testing.T) {
	set := ArtifactSet{"c": {{Type: "T", URI: "u"}}}
	clone := set.Clone()
	clone["c"][0].URI = "changed"
	if set["c"][0].URI != "u" {
		t.Fatalf("Clone() must copy artifact lists")
	}
}
