package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"streams", "artifacts"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createTestStore(t)

	db := s.DB()
	if db == nil {
		t.Fatal("DB() returned nil")
	}
	if err := db.Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name string
		want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}
	for _, tt := range tests {
		if err := s.verifyPragma(tt.name, tt.want); err != nil {
			t.Error(err)
		}
	}
}

func TestMigration_SchemaVersion(t *testing.T) {
	s := createTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("failed to get user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestOpen_CreatesIndexes(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name string
	}{
		{"idx_artifacts_kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var name string
			err := s.db.QueryRow(
				"SELECT name FROM sqlite_master WHERE type='index' AND name=?", tt.name,
			).Scan(&name)
			if err != nil {
				t.Errorf("index %s missing: %v", tt.name, err)
			}
		})
	}
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion+1)); err != nil {
		t.Fatalf("failed to set user_version: %v", err)
	}
	db.Close()

	s, err := Open(path)
	if err == nil {
		s.Close()
		t.Fatal("Open() succeeded on a newer archive")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("Open() error = %v", err)
	}
}

func TestAppendAndReadStream(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	if err := s.CreateStream(ctx, "st1", "mlc", testCreated); err != nil {
		t.Fatalf("CreateStream() failed: %v", err)
	}

	lines := sampleLines()
	// Insert out of order; reads come back by seq.
	for _, i := range []int{3, 0, 1, 2, 6, 5, 4} {
		if err := s.AppendLine(ctx, "st1", lines[i]); err != nil {
			t.Fatalf("AppendLine(%d) failed: %v", i, err)
		}
	}

	arts, err := s.ReadStream(ctx, "st1")
	if err != nil {
		t.Fatalf("ReadStream() failed: %v", err)
	}
	if len(arts) != len(lines) {
		t.Fatalf("got %d artifacts, want %d", len(arts), len(lines))
	}
	for i, a := range arts {
		if a.Line != lines[i] {
			t.Errorf("artifact %d line = %s, want %s", i, a.Line, lines[i])
		}
	}
	if !Contiguous(arts) {
		t.Error("Contiguous() = false for a full stream")
	}

	want := Artifact{Seq: 3, Kind: "measurement", StepID: "0", Line: lines[3]}
	if arts[3] != want {
		t.Errorf("arts[3] = %+v, want %+v", arts[3], want)
	}
	if arts[1].Kind != "testRunStart" || arts[1].StepID != "" {
		t.Errorf("arts[1] = %+v", arts[1])
	}
}

func TestAppendLine_DuplicateSeqIgnored(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	if err := s.CreateStream(ctx, "st1", "x", testCreated); err != nil {
		t.Fatal(err)
	}

	first := runLine(1, "log", `{"severity":"INFO","message":"first"}`)
	second := runLine(1, "log", `{"severity":"INFO","message":"second"}`)
	for _, line := range []string{first, second} {
		if err := s.AppendLine(ctx, "st1", line); err != nil {
			t.Fatalf("AppendLine() failed: %v", err)
		}
	}

	arts, err := s.ReadStream(ctx, "st1")
	if err != nil {
		t.Fatal(err)
	}
	if len(arts) != 1 || arts[0].Line != first {
		t.Errorf("got %+v, want only the first line", arts)
	}
}

func TestAppendLine_Errors(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	if err := s.CreateStream(ctx, "st1", "x", testCreated); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		stream string
		line   string
	}{
		{"not json", "st1", "nope"},
		{"no sequence number", "st1", `{"testRunArtifact":{"log":{}}}`},
		{"no artifact", "st1", `{"sequenceNumber":1}`},
		{"unknown stream", "missing", runLine(1, "log", `{}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.AppendLine(ctx, tt.stream, tt.line); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestListStreams(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	streams, err := s.ListStreams(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if streams == nil || len(streams) != 0 {
		t.Fatalf("empty store: got %#v, want empty slice", streams)
	}

	later := testCreated.Add(time.Minute)
	if err := s.CreateStream(ctx, "b", "second", later); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateStream(ctx, "a", "first", testCreated); err != nil {
		t.Fatal(err)
	}
	for _, line := range sampleLines()[:3] {
		if err := s.AppendLine(ctx, "a", line); err != nil {
			t.Fatal(err)
		}
	}

	streams, err = s.ListStreams(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []Stream{
		{ID: "a", Label: "first", CreatedAt: testCreated, Lines: 3},
		{ID: "b", Label: "second", CreatedAt: later, Lines: 0},
	}
	if len(streams) != len(want) {
		t.Fatalf("ListStreams() = %+v, want %+v", streams, want)
	}
	for i := range want {
		got := streams[i]
		if got.ID != want[i].ID || got.Label != want[i].Label || got.Lines != want[i].Lines || !got.CreatedAt.Equal(want[i].CreatedAt) {
			t.Errorf("streams[%d] = %+v, want %+v", i, got, want[i])
		}
	}
}

func TestGetStream_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetStream(context.Background(), "nope")
	if !errors.Is(err, ErrStreamNotFound) {
		t.Errorf("GetStream() error = %v, want ErrStreamNotFound", err)
	}
	_, err = s.ReadStream(context.Background(), "nope")
	if !errors.Is(err, ErrStreamNotFound) {
		t.Errorf("ReadStream() error = %v, want ErrStreamNotFound", err)
	}
}

func TestKindCounts(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	if err := s.CreateStream(ctx, "st1", "x", testCreated); err != nil {
		t.Fatal(err)
	}
	w := s.Writer(ctx, "st1")
	for _, line := range sampleLines() {
		if err := w.Write(line); err != nil {
			t.Fatal(err)
		}
	}

	counts, err := s.KindCounts(ctx, "st1")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{
		"schemaVersion": 1,
		"testRunStart":  1,
		"testStepStart": 1,
		"measurement":   2,
		"testStepEnd":   1,
		"testRunEnd":    1,
	}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("KindCounts() = %v, want %v", counts, want)
	}
	if w.StreamID() != "st1" {
		t.Errorf("StreamID() = %q", w.StreamID())
	}
}

func TestContiguous(t *testing.T) {
	if !Contiguous(nil) {
		t.Error("empty stream should be contiguous")
	}
	if Contiguous([]Artifact{{Seq: 0}, {Seq: 2}}) {
		t.Error("gap not detected")
	}
	if Contiguous([]Artifact{{Seq: 1}}) {
		t.Error("missing preamble not detected")
	}
}
