package entity

import (
	"time"

	"github.com/openelig/eligibility-tracker/constants"
)

// ExtractionRecord is one fully populated row of extracted eligibility data.
// Every field is always present; unmatched fields hold the empty string, never
// a placeholder. The struct field order is the canonical column order and must
// stay in sync with FieldNames and Values: spreadsheet and table consumers
// rely on positional stability.
type ExtractionRecord struct {
	Timestamp           string `json:"timestamp"`
	Sentiment           string `json:"sentiment"`
	MemberID            string `json:"member_id"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	DOB                 string `json:"dob"`
	Address             string `json:"address"`
	City                string `json:"city"`
	State               string `json:"state"`
	ZipCode             string `json:"zip_code"`
	AddressStatus       string `json:"address_status"`
	MemberStatus        string `json:"member_status"`
	StartDate           string `json:"start_date"`
	EndDate             string `json:"end_date"`
	HealthPlan          string `json:"health_plan"`
	ContractType        string `json:"contract_type"`
	Codes               string `json:"codes"`
	ChangeRequest       string `json:"change_request"`
	RawText             string `json:"raw_text"`
	UserIdentifier      string `json:"user_identifier"`
	ExtractedBy         string `json:"extracted_by"`
	ExtractionTimestamp string `json:"extraction_timestamp"`
}

// TimestampFormat is the format used for the record timestamps. Chosen to
// render cleanly in spreadsheet cells.
const TimestampFormat = "2006-01-02 15:04:05"

// FieldNames returns the canonical column headers, in record order.
func FieldNames() []string {
	return []string{
		"timestamp",
		"sentiment",
		"member_id",
		"first_name",
		"last_name",
		"dob",
		"address",
		"city",
		"state",
		"zip_code",
		"address_status",
		"member_status",
		"start_date",
		"end_date",
		"health_plan",
		"contract_type",
		"codes",
		"change_request",
		"raw_text",
		"user_identifier",
		"extracted_by",
		"extraction_timestamp",
	}
}

// Values returns the row values aligned with FieldNames.
func (r *ExtractionRecord) Values() []string {
	return []string{
		r.Timestamp,
		r.Sentiment,
		r.MemberID,
		r.FirstName,
		r.LastName,
		r.DOB,
		r.Address,
		r.City,
		r.State,
		r.ZipCode,
		r.AddressStatus,
		r.MemberStatus,
		r.StartDate,
		r.EndDate,
		r.HealthPlan,
		r.ContractType,
		r.Codes,
		r.ChangeRequest,
		r.RawText,
		r.UserIdentifier,
		r.ExtractedBy,
		r.ExtractionTimestamp,
	}
}

// SetSentiment stores the classifier label.
func (r *ExtractionRecord) SetSentiment(s constants.Sentiment) {
	r.Sentiment = string(s)
}

// Stamp sets the assembly timestamp. Kept separate from extraction so tests can
// compare records modulo timestamps.
func (r *ExtractionRecord) Stamp(now time.Time) {
	r.Timestamp = now.Format(TimestampFormat)
}
