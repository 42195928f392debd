package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ecobot/internal/logger"
	"ecobot/internal/model"
	"ecobot/internal/repository"
	"ecobot/internal/repository/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const browserExport = `[
  {"coordinates":{"latitude":12.5,"longitude":-150.25},"plasticLevel":"high","timestamp":"2025-01-02T03:04:05.000Z"},
  {"coordinates":{"latitude":-40,"longitude":80},"plasticLevel":"low","timestamp":"2025-01-03T03:04:05.000Z"}
]`

func memoryStore() *repository.RecordStore {
	return repository.NewRecordStore(kv.NewMemory(), logger.Nop())
}

func TestImportRecords(t *testing.T) {
	store := memoryStore()

	n, skipped, err := importRecords(context.Background(), store, strings.NewReader(browserExport), false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Zero(t, skipped)

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, model.LevelHigh, records[0].PlasticLevel)
}

func TestImportRecords_Invalid(t *testing.T) {
	input := `[{"coordinates":{"latitude":100,"longitude":0},"plasticLevel":"low","timestamp":"2025-01-01T00:00:00.000Z"},
	{"coordinates":{"latitude":1,"longitude":1},"plasticLevel":"medium","timestamp":"2025-01-01T00:00:00.000Z"}]`

	_, _, err := importRecords(context.Background(), memoryStore(), strings.NewReader(input), false)
	assert.Error(t, err)

	store := memoryStore()
	n, skipped, err := importRecords(context.Background(), store, strings.NewReader(input), true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, skipped)

	_, _, err = importRecords(context.Background(), store, strings.NewReader(`{"not":"an array"}`), true)
	assert.Error(t, err)
}

func TestExportRecords(t *testing.T) {
	store := memoryStore()
	_, _, err := importRecords(context.Background(), store, strings.NewReader(browserExport), false)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := exportRecords(context.Background(), store, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var back []model.DetectionRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Len(t, back, 2)
}

func TestCommands_FileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "export.json")
	require.NoError(t, os.WriteFile(input, []byte(browserExport), 0o644))

	run := func(args ...string) string {
		root := newRootCommand()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&bytes.Buffer{})
		root.SetArgs(append(args, "--driver", "file", "--data-dir", filepath.Join(dir, "store")))
		require.NoError(t, root.Execute())
		return out.String()
	}

	assert.Contains(t, run("import", input), "Imported 2 record(s)")

	var records []model.DetectionRecord
	require.NoError(t, json.Unmarshal([]byte(run("export")), &records))
	assert.Len(t, records, 2)
}
