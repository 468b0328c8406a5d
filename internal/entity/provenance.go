package entity

import (
	"time"

	"github.com/openelig/eligibility-tracker/internal/common"
)

// Provenance is caller-supplied metadata attached to every record. It is never
// derived from the message text itself. Missing sender or extractor identity is
// the one fatal input error of the extraction engine: records without an audit
// trail must not reach the append pipeline.
type Provenance struct {
	UserIdentifier string    `json:"user_identifier"`
	ExtractedBy    string    `json:"extracted_by"`
	ConversationID string    `json:"conversation_id,omitempty"`
	CapturedAt     time.Time `json:"captured_at"`
}

// Validate rejects provenance missing required identifiers.
func (p Provenance) Validate() error {
	v := common.NewValidator().
		Field("user_identifier", p.UserIdentifier, common.Required).
		Field("extracted_by", p.ExtractedBy, common.Required)
	return v.Error()
}
