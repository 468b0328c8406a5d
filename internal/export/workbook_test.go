package export

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/openelig/eligibility-tracker/internal/entity"
)

func testRecord(memberID string) *entity.ExtractionRecord {
	rec := &entity.ExtractionRecord{
		Sentiment:      "Neutral",
		MemberID:       memberID,
		FirstName:      "John",
		LastName:       "Doe",
		RawText:        "member id " + memberID,
		UserIdentifier: "agent.smith",
		ExtractedBy:    "eligibility-tracker",
	}
	rec.Stamp(time.Now())
	rec.ExtractionTimestamp = rec.Timestamp
	return rec
}

func TestWorkbookStore_AppendAndList(t *testing.T) {
	store, err := NewWorkbookStore(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, testRecord("111")))
	require.NoError(t, store.Append(ctx, testRecord("222")))

	recs, err := store.List(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "111", recs[0].MemberID)
	assert.Equal(t, "222", recs[1].MemberID)
	assert.Equal(t, "John", recs[0].FirstName)
	assert.Equal(t, "member id 111", recs[0].RawText)
	assert.Equal(t, "agent.smith", recs[0].UserIdentifier)
}

func TestWorkbookStore_HeaderRow(t *testing.T) {
	dir := t.TempDir()
	store, err := NewWorkbookStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), testRecord("111")))

	path := store.dailyPath(time.Now())
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 2)
	assert.Equal(t, entity.FieldNames(), rows[0])
}

func TestWorkbookStore_ListWindow(t *testing.T) {
	store, err := NewWorkbookStore(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, testRecord("111")))

	// today's workbook is inside a window around now
	from := time.Now().AddDate(0, 0, -1)
	to := time.Now().AddDate(0, 0, 1)
	recs, err := store.List(ctx, &from, &to)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	// and outside a window in the past
	past := time.Now().AddDate(0, 0, -7)
	recs, err = store.List(ctx, nil, &past)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestExportXLSX(t *testing.T) {
	store, err := NewWorkbookStore(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, testRecord("111")))

	svc := NewService(store, nil)
	data, err := svc.ExportXLSX(ctx, nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, data)
}
