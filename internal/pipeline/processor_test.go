package pipeline

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openelig/eligibility-tracker/internal/entity"
	"github.com/openelig/eligibility-tracker/internal/export"
	"github.com/openelig/eligibility-tracker/internal/extract"
	"github.com/openelig/eligibility-tracker/internal/ocr"
)

func testProv() entity.Provenance {
	return entity.Provenance{
		UserIdentifier: "agent.smith",
		ExtractedBy:    "eligibility-tracker",
		CapturedAt:     time.Now(),
	}
}

func newTestProcessor(t *testing.T, ocrURL string) (*Processor, *export.WorkbookStore) {
	t.Helper()
	store, err := export.NewWorkbookStore(t.TempDir(), nil)
	require.NoError(t, err)
	extractor := extract.NewExtractor(nil)
	proc := NewProcessor(nil, extractor, ocr.NewClient(ocrURL, 0, nil), store, nil, nil)
	return proc, store
}

func TestProcessMessage_Text(t *testing.T) {
	proc, store := newTestProcessor(t, "")

	res, err := proc.ProcessMessage(context.Background(), Message{
		Text:       "member id 12345 status active",
		Provenance: testProv(),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	assert.Equal(t, "12345", res.Record.MemberID)
	assert.False(t, res.OCRUsed)
	assert.NotEmpty(t, res.MessageID)

	recs, err := store.List(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "12345", recs[0].MemberID)
}

func TestProcessMessage_ImageOCR(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "member id 555 status active"}`))
	}))
	defer srv.Close()

	proc, _ := newTestProcessor(t, srv.URL)
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake"))

	res, err := proc.ProcessMessage(context.Background(), Message{
		ImageDataURL: dataURL,
		Provenance:   testProv(),
	})
	require.NoError(t, err)
	assert.True(t, res.OCRUsed)
	assert.Equal(t, "555", res.Record.MemberID)
	assert.Equal(t, "ACTIVE", res.Record.MemberStatus)
}

func TestProcessMessage_OCRFailureFallsBackToCaption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "ocr down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	proc, _ := newTestProcessor(t, srv.URL)
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("fake"))

	res, err := proc.ProcessMessage(context.Background(), Message{
		Text:         "member id 777",
		ImageDataURL: dataURL,
		Provenance:   testProv(),
	})
	require.NoError(t, err)
	assert.False(t, res.OCRUsed)
	assert.Equal(t, "777", res.Record.MemberID)
}

func TestProcessMessage_NoText(t *testing.T) {
	proc, _ := newTestProcessor(t, "")
	_, err := proc.ProcessMessage(context.Background(), Message{Provenance: testProv()})
	require.Error(t, err)
}

func TestProcessMessage_InvalidProvenance(t *testing.T) {
	proc, _ := newTestProcessor(t, "")
	_, err := proc.ProcessMessage(context.Background(), Message{Text: "member id 1"})
	require.Error(t, err)
}
