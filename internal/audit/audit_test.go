package audit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/critics-hub/yamdb/pkg/logger"
)

func TestTrail_WriteAndReadAll(t *testing.T) {
	logger.Init(false)

	tmpDir := t.TempDir()
	trail, err := NewTrail(filepath.Join(tmpDir, "audit.log"))
	if err != nil {
		t.Fatalf("Failed to create trail: %v", err)
	}
	defer trail.Close()

	records := []Record{
		{Actor: "admin", Action: "category.create", Resource: "films"},
		{Actor: "admin", Action: "title.create", Resource: "42"},
		{Actor: "moder", Action: "review.delete", Resource: "7"},
	}

	for _, record := range records {
		if err := trail.Write(record); err != nil {
			t.Fatalf("Failed to write record: %v", err)
		}
	}

	got, err := trail.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read trail: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(got))
	}
	for i, record := range got {
		if record.Action != records[i].Action {
			t.Fatalf("Expected action %s at index %d, got %s", records[i].Action, i, record.Action)
		}
		if record.Timestamp.IsZero() {
			t.Fatalf("Expected timestamp to be filled in, record %d", i)
		}
	}

	// Writes after a read must land after the existing entries.
	late := Record{Actor: "admin", Action: "genre.delete", Resource: "noir", Timestamp: time.Now()}
	if err := trail.Write(late); err != nil {
		t.Fatalf("Failed to write after read: %v", err)
	}

	got, err = trail.ReadAll()
	if err != nil {
		t.Fatalf("Failed to re-read trail: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Expected 4 records, got %d", len(got))
	}
	if got[3].Resource != "noir" {
		t.Fatalf("Expected last resource noir, got %s", got[3].Resource)
	}
}
