package extract

import (
	"regexp"
	"strings"
)

// fieldSpec describes one extractable field as data: its synonym anchors, an
// optional pattern that narrows the captured span, the punctuation that ends
// a capture, and a normalizer. Adding a field is a table edit, not new scan
// code.
type fieldSpec struct {
	name      string
	anchors   []string
	pattern   *regexp.Regexp
	stop      string
	normalize func(string) string
}

// Virtual field names: captured by the scanner, decomposed by the extractor.
const (
	fieldFullName     = "full_name"
	fieldAddressBlock = "address_block"
)

const defaultStop = ",;|"

var (
	reMemberID     = regexp.MustCompile(`\d{3,12}`)
	rePersonName   = regexp.MustCompile(`[A-Z][A-Za-z'.\-]+(?: [A-Z][A-Za-z'.\-]+){0,3}`)
	reStateCode    = regexp.MustCompile(`[A-Za-z]{2}\b`)
	reContractCode = regexp.MustCompile(`[0-9A-Za-z\-]{1,10}`)
	reCodeList     = regexp.MustCompile(`\d{3,6}(?:\s*[,/;]\s*\d{3,6}|\s+\d{3,6})*`)
)

// fieldTable is the anchor/capture/normalize table driving extraction. Order
// is cosmetic; capture boundaries come from anchor positions in the text.
func fieldTable() []fieldSpec {
	return []fieldSpec{
		{
			name:      "member_id",
			anchors:   []string{"member id", "memberid", "member #", "member no", "memb", "member"},
			pattern:   reMemberID,
			stop:      defaultStop,
			normalize: strings.TrimSpace,
		},
		{
			name:      fieldFullName,
			anchors:   []string{"member name", "patient name", "name"},
			pattern:   rePersonName,
			stop:      defaultStop,
			normalize: NormalizeName,
		},
		{
			name:      "dob",
			anchors:   []string{"date of birth", "birth date", "birthdate", "dob"},
			stop:      ";|",
			normalize: NormalizeDate,
		},
		{
			name:      fieldAddressBlock,
			anchors:   []string{"street address", "mailing address", "address", "addr"},
			stop:      ";|",
			normalize: NormalizeName,
		},
		{
			name:      "city",
			anchors:   []string{"city"},
			stop:      defaultStop,
			normalize: NormalizeName,
		},
		{
			name:      "state",
			anchors:   []string{"state"},
			pattern:   reStateCode,
			stop:      defaultStop,
			normalize: strings.ToUpper,
		},
		{
			name:      "zip_code",
			anchors:   []string{"zip code", "zipcode", "postal code", "zip"},
			stop:      defaultStop,
			normalize: NormalizeZip,
		},
		{
			name:      "address_status",
			anchors:   []string{"address status"},
			stop:      defaultStop,
			normalize: strings.TrimSpace,
		},
		{
			name:      "member_status",
			anchors:   []string{"member status", "status should be", "eligibility status", "status"},
			stop:      defaultStop,
			normalize: NormalizeStatus,
		},
		{
			name: "start_date",
			anchors: []string{
				"coverage start date", "coverage begin date", "coverage start", "coverage begins",
				"coverage begin", "coverage from", "effective date", "start date", "begin date",
				"active starting", "active from", "active frm", "begin", "effective",
			},
			stop:      ";|",
			normalize: NormalizeDate,
		},
		{
			name: "end_date",
			anchors: []string{
				"plan end date", "coverage end date", "termed effective", "terminated effective",
				"term effective", "term eff", "plan end", "coverage end", "end date", "term date",
				"through",
			},
			stop:      ";|",
			normalize: NormalizeDate,
		},
		{
			name:      "health_plan",
			anchors:   []string{"health plan", "plan type", "new plan", "plan", "pln"},
			stop:      defaultStop,
			normalize: NormalizePlan,
		},
		{
			name:      "contract_type",
			anchors:   []string{"contract type", "contract"},
			pattern:   reContractCode,
			stop:      defaultStop,
			normalize: strings.TrimSpace,
		},
		{
			name:      "codes",
			anchors:   []string{"health codes", "health code", "codes", "code", "cd"},
			pattern:   reCodeList,
			stop:      ";|",
			normalize: NormalizeCodes,
		},
		{
			name: "change_request",
			anchors: []string{
				"change request", "request to update", "please update", "please revise",
				"please process", "need to change", "update request",
			},
			stop:      ";|",
			normalize: NormalizeName,
		},
	}
}
