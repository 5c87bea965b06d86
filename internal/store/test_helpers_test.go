package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

var testCreated = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// createTestStore opens a fresh store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func runLine(seq int, kind, body string) string {
	return fmt.Sprintf(`{"testRunArtifact":{%q:%s},"sequenceNumber":%d,"timestamp":"2024-01-01T00:00:00.000000Z"}`, kind, body, seq)
}

func stepLine(seq int, stepID, kind, body string) string {
	return fmt.Sprintf(`{"testStepArtifact":{%q:%s,"testStepId":%q},"sequenceNumber":%d,"timestamp":"2024-01-01T00:00:00.000000Z"}`, kind, body, stepID, seq)
}

func sampleLines() []string {
	return []string{
		`{"schemaVersion":{"major":2,"minor":0},"sequenceNumber":0,"timestamp":"2024-01-01T00:00:00.000000Z"}`,
		runLine(1, "testRunStart", `{"name":"mlc","version":"1.0"}`),
		stepLine(2, "0", "testStepStart", `{"name":"s"}`),
		stepLine(3, "0", "measurement", `{"name":"bw","value":1,"validators":[]}`),
		stepLine(4, "0", "measurement", `{"name":"lat","value":2,"validators":[]}`),
		stepLine(5, "0", "testStepEnd", `{"status":"COMPLETE"}`),
		runLine(6, "testRunEnd", `{"status":"COMPLETE","result":"PASS"}`),
	}
}
