// Package audit keeps a durable append-only record of privileged mutations:
// admin user management, catalog writes and moderator deletions.
package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/critics-hub/yamdb/pkg/logger"
	"go.uber.org/zap"
)

// Record is one audited action.
type Record struct {
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`   // e.g. "title.create", "user.delete", "review.delete"
	Resource  string    `json:"resource"` // slug, username or numeric id of the target
	Timestamp time.Time `json:"timestamp"`
}

// Trail is an append-only JSONL file, synced on every write.
type Trail struct {
	filePath string
	file     *os.File
	mu       sync.Mutex
}

func NewTrail(filePath string) (*Trail, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Trail{
		filePath: filePath,
		file:     file,
	}, nil
}

// Write appends a record and forces it to disk.
func (t *Trail) Write(record Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	data, err := json.Marshal(record)
	if err != nil {
		logger.Log.Error("Audit: failed to marshal record",
			zap.String("action", record.Action),
			zap.Error(err),
		)
		return err
	}

	if _, err := t.file.WriteString(string(data) + "\n"); err != nil {
		logger.Log.Error("Audit: failed to write record",
			zap.String("action", record.Action),
			zap.Error(err),
		)
		return err
	}

	if err := t.file.Sync(); err != nil {
		logger.Log.Error("Audit: failed to sync to disk",
			zap.String("action", record.Action),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Debug("Audit: record written",
		zap.String("actor", record.Actor),
		zap.String("action", record.Action),
		zap.String("resource", record.Resource),
	)

	return nil
}

// ReadAll returns every record in write order.
func (t *Trail) ReadAll() ([]Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.file.Seek(0, 0); err != nil {
		return nil, err
	}

	var records []Record
	scanner := bufio.NewScanner(t.file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			// A torn write at the tail is not fatal; skip it.
			continue
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// Restore append position.
	if _, err := t.file.Seek(0, 2); err != nil {
		return nil, err
	}

	return records, nil
}

func (t *Trail) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.file.Close()
}
