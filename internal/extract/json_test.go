package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_StructuredPayload(t *testing.T) {
	text := `{"member_id": 12345, "first_name": "Ana", "last_name": "Lopez", "zip": "62704-1234", "status": "termed", "plan": "ppo", "dob": "1/2/90"}`

	rec, err := testExtractor().Extract(text, testProvenance())
	require.NoError(t, err)

	assert.Equal(t, "12345", rec.MemberID)
	assert.Equal(t, "Ana", rec.FirstName)
	assert.Equal(t, "Lopez", rec.LastName)
	assert.Equal(t, "627041234", rec.ZipCode)
	assert.Equal(t, "TERMINATED", rec.MemberStatus)
	assert.Equal(t, "PPO", rec.HealthPlan)
	assert.Equal(t, "1990-01-02", rec.DOB)
	assert.Equal(t, text, rec.RawText)
}

func TestExtract_StructuredAliasAndCanonicalKey(t *testing.T) {
	// when a payload carries both an alias and its canonical key, the
	// canonical key wins, and the outcome is the same on every call
	text := `{"status": "active", "member_status": "pending", "zip": "11111", "zip_code": "22222", "plan": "ppo", "health_plan": "epo"}`
	ex := testExtractor()

	for i := 0; i < 50; i++ {
		rec, err := ex.Extract(text, testProvenance())
		require.NoError(t, err)
		assert.Equal(t, "pending", rec.MemberStatus)
		assert.Equal(t, "22222", rec.ZipCode)
		assert.Equal(t, "EPO", rec.HealthPlan)
	}
}

func TestExtract_StructuredUnknownKeysIgnored(t *testing.T) {
	rec, err := testExtractor().Extract(`{"member_id": "777", "mystery": "field"}`, testProvenance())
	require.NoError(t, err)
	assert.Equal(t, "777", rec.MemberID)
}

func TestExtract_MalformedJSONFallsBackToScan(t *testing.T) {
	rec, err := testExtractor().Extract("{oops member id 321", testProvenance())
	require.NoError(t, err)
	assert.Equal(t, "321", rec.MemberID)
}

func TestExtract_SchemaViolationFallsBackToScan(t *testing.T) {
	// first_name must be a string; the payload is rejected and scanned as text
	rec, err := testExtractor().Extract(`{"first_name": 5}`, testProvenance())
	require.NoError(t, err)
	assert.Empty(t, rec.FirstName)
}

func TestTryStructured_NonObject(t *testing.T) {
	assert.False(t, tryStructured(`["not", "an", "object"]`, nil))
	assert.False(t, tryStructured("plain text", nil))
}
