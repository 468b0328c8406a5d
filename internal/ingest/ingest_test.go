package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openelig/eligibility-tracker/internal/export"
	"github.com/openelig/eligibility-tracker/internal/extract"
	"github.com/openelig/eligibility-tracker/internal/ocr"
	"github.com/openelig/eligibility-tracker/internal/pipeline"
)

func testIngestor(t *testing.T) (*Ingestor, *export.WorkbookStore) {
	t.Helper()
	store, err := export.NewWorkbookStore(t.TempDir(), nil)
	require.NoError(t, err)
	extractor := extract.NewExtractor(nil)
	proc := pipeline.NewProcessor(nil, extractor, ocr.NewClient("", 0, nil), store, nil, nil)
	return NewIngestor(proc, "eligibility-tracker", nil), store
}

func TestIngestFile_Text(t *testing.T) {
	ing, store := testIngestor(t)

	path := filepath.Join(t.TempDir(), "drop.txt")
	require.NoError(t, os.WriteFile(path, []byte("member id 12345 status active"), 0o644))

	require.NoError(t, ing.IngestFile(context.Background(), path))

	recs, err := store.List(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "12345", recs[0].MemberID)
	assert.Equal(t, "drop-folder", recs[0].UserIdentifier)
}

func TestIngestFile_ImageWithoutOCRFails(t *testing.T) {
	ing, _ := testIngestor(t)

	path := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, os.WriteFile(path, []byte("not-really-a-png"), 0o644))

	require.Error(t, ing.IngestFile(context.Background(), path))
}

func TestIngestFile_Missing(t *testing.T) {
	ing, _ := testIngestor(t)
	require.Error(t, ing.IngestFile(context.Background(), filepath.Join(t.TempDir(), "nope.txt")))
}

func TestStartWatcher_InitialScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("member id 1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.pdf"), []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    10 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	select {
	case p := <-paths:
		assert.Equal(t, filepath.Join(dir, "a.txt"), p)
	case <-time.After(2 * time.Second):
		t.Fatal("expected initial-scan path")
	}
}

func TestStartWatcher_InitialScanLargeFolder(t *testing.T) {
	dir := t.TempDir()
	const n = 300 // larger than the path channel buffer
	for i := 0; i < n; i++ {
		name := filepath.Join(dir, fmt.Sprintf("scan-%03d.txt", i))
		require.NoError(t, os.WriteFile(name, []byte("member id 1"), 0o644))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		Debounce:    10 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	got := make(map[string]struct{})
	deadline := time.After(5 * time.Second)
	for len(got) < n {
		select {
		case p := <-paths:
			got[p] = struct{}{}
		case <-deadline:
			t.Fatalf("received %d of %d pre-existing files", len(got), n)
		}
	}
}

func TestStartWatcher_NoRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, nil)
	require.Error(t, err)
}
