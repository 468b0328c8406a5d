package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/openelig/eligibility-tracker/internal/entity"
)

// Structured submissions: some upstream systems post the eligibility payload
// as a JSON object instead of prose. Inputs starting with "{" are validated
// against this schema and mapped directly onto the record; on any failure the
// caller falls through to text extraction.
const payloadSchema = `{
	"type": "object",
	"properties": {
		"member_id":      {"type": ["string", "number", "integer"]},
		"first_name":     {"type": "string"},
		"last_name":      {"type": "string"},
		"dob":            {"type": "string"},
		"address":        {"type": "string"},
		"city":           {"type": "string"},
		"state":          {"type": "string"},
		"zip":            {"type": ["string", "number", "integer"]},
		"zip_code":       {"type": ["string", "number", "integer"]},
		"address_status": {"type": "string"},
		"status":         {"type": "string"},
		"member_status":  {"type": "string"},
		"start_date":     {"type": "string"},
		"end_date":       {"type": "string"},
		"plan":           {"type": "string"},
		"health_plan":    {"type": "string"},
		"contract_type":  {"type": "string"},
		"codes":          {"type": "string"},
		"change_request": {"type": "string"}
	}
}`

var compiledPayloadSchema = jsonschema.MustCompileString("payload.json", payloadSchema)

// payloadAliases maps accepted JSON keys onto record columns.
var payloadAliases = map[string]string{
	"member_id":      "member_id",
	"first_name":     "first_name",
	"last_name":      "last_name",
	"dob":            "dob",
	"address":        "address",
	"city":           "city",
	"state":          "state",
	"zip":            "zip_code",
	"zip_code":       "zip_code",
	"address_status": "address_status",
	"status":         "member_status",
	"member_status":  "member_status",
	"start_date":     "start_date",
	"end_date":       "end_date",
	"plan":           "health_plan",
	"health_plan":    "health_plan",
	"contract_type":  "contract_type",
	"codes":          "codes",
	"change_request": "change_request",
}

// payloadKeys is the fixed application order for accepted keys. Each alias
// precedes its canonical key, so a payload carrying both resolves to the
// canonical value on every call.
var payloadKeys = []string{
	"member_id",
	"first_name",
	"last_name",
	"dob",
	"address",
	"city",
	"state",
	"zip",
	"zip_code",
	"address_status",
	"status",
	"member_status",
	"start_date",
	"end_date",
	"plan",
	"health_plan",
	"contract_type",
	"codes",
	"change_request",
}

// tryStructured attempts the JSON fast-path. ok is false when the input is
// not a structured payload (or fails validation) and text extraction should
// run instead.
func tryStructured(text string, rec *entity.ExtractionRecord) (ok bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return false
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return false
	}
	obj, isObj := decoded.(map[string]any)
	if !isObj {
		return false
	}
	if err := compiledPayloadSchema.Validate(decoded); err != nil {
		return false
	}

	for _, key := range payloadKeys {
		val, present := obj[key]
		if !present {
			continue
		}
		setColumn(rec, payloadAliases[key], stringify(val))
	}

	rec.DOB = NormalizeDate(rec.DOB)
	rec.StartDate = NormalizeDate(rec.StartDate)
	rec.EndDate = NormalizeDate(rec.EndDate)
	if rec.ZipCode != "" {
		rec.ZipCode = NormalizeZip(rec.ZipCode)
	}
	if rec.MemberStatus != "" {
		rec.MemberStatus = NormalizeStatus(rec.MemberStatus)
	}
	if rec.HealthPlan != "" {
		rec.HealthPlan = NormalizePlan(rec.HealthPlan)
	}
	return true
}

func setColumn(rec *entity.ExtractionRecord, column, value string) {
	switch column {
	case "member_id":
		rec.MemberID = value
	case "first_name":
		rec.FirstName = value
	case "last_name":
		rec.LastName = value
	case "dob":
		rec.DOB = value
	case "address":
		rec.Address = value
	case "city":
		rec.City = value
	case "state":
		rec.State = value
	case "zip_code":
		rec.ZipCode = value
	case "address_status":
		rec.AddressStatus = value
	case "member_status":
		rec.MemberStatus = value
	case "start_date":
		rec.StartDate = value
	case "end_date":
		rec.EndDate = value
	case "health_plan":
		rec.HealthPlan = value
	case "contract_type":
		rec.ContractType = value
	case "codes":
		rec.Codes = value
	case "change_request":
		rec.ChangeRequest = value
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
