package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ocptv/internal/store"
	"github.com/roach88/ocptv/internal/testutil"
)

func executeReplay(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	cmd := NewReplayCommand(&RootOptions{Format: format})
	stdout := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

// archiveBasicRun runs basic_run.yaml into a fresh archive and returns the
// database path and stream id.
func archiveBasicRun(t *testing.T) (string, string) {
	t.Helper()
	db := filepath.Join(t.TempDir(), "streams.db")
	clock := testutil.NewDeterministicClock()
	opts := &RunOptions{RootOptions: &RootOptions{Format: "json"}, Clock: clock.Now}

	stdout, _, err := executeRun(t, opts,
		filepath.Join(scenarioDir, "basic_run.yaml"),
		"--output", filepath.Join(t.TempDir(), "out.jsonl"),
		"--archive", db)
	require.NoError(t, err)

	var resp struct {
		Data RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.StreamID, 36)
	return db, resp.Data.StreamID
}

func TestReplay_PrintsArchivedStream(t *testing.T) {
	db, id := archiveBasicRun(t)

	stdout, err := executeReplay(t, "text", "--db", db, id)
	require.NoError(t, err)

	golden, err := os.ReadFile(filepath.Join("..", "harness", "testdata", "golden", "basic_run.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(golden), stdout)
}

func TestReplay_JSONSummary(t *testing.T) {
	db, id := archiveBasicRun(t)

	stdout, err := executeReplay(t, "json", "--db", db, id)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "basic_run", resp.Data.Stream.Label)
	assert.Equal(t, 6, resp.Data.Stream.Lines)
	assert.True(t, resp.Data.Contiguous)
	assert.Equal(t, 1, resp.Data.Kinds["measurement"])
	assert.Len(t, resp.Data.Lines, 6)
}

func TestReplay_ListStreams(t *testing.T) {
	db, id := archiveBasicRun(t)

	stdout, err := executeReplay(t, "text", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "ID")
	assert.Contains(t, stdout, id)
	assert.Contains(t, stdout, "basic_run")
}

func TestReplay_EmptyArchive(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")

	stdout, err := executeReplay(t, "text", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No streams found")
}

func TestReplay_UnknownStream(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")

	_, err := executeReplay(t, "text", "--db", db, "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReplay_GapsFail(t *testing.T) {
	db := filepath.Join(t.TempDir(), "gappy.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, st.CreateStream(ctx, "s1", "gappy", testutil.Epoch))
	require.NoError(t, st.AppendLine(ctx, "s1", `{"schemaVersion":{"major":2,"minor":0},"sequenceNumber":0,"timestamp":"2024-01-01T00:00:00.000000Z"}`))
	require.NoError(t, st.AppendLine(ctx, "s1", `{"testRunArtifact":{"testRunEnd":{"status":"COMPLETE","result":"PASS"}},"sequenceNumber":2,"timestamp":"2024-01-01T00:00:00.002000Z"}`))
	require.NoError(t, st.Close())

	stdout, err := executeReplay(t, "text", "--db", db, "s1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Len(t, strings.Split(strings.TrimSpace(stdout), "\n"), 2)
}
