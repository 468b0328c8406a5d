// Package extract implements the field-extraction and record-assembly engine:
// it maps an arbitrary text blob (typed chat or OCR output) into a complete,
// fixed-schema ExtractionRecord. Extraction is a pure function of the input
// text and caller-supplied provenance (no I/O, no shared state) so it is
// safe to call concurrently and to re-run freely.
package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/openelig/eligibility-tracker/constants"
	"github.com/openelig/eligibility-tracker/internal/common"
	"github.com/openelig/eligibility-tracker/internal/entity"
	"github.com/openelig/eligibility-tracker/internal/sentiment"
)

// changeRequestMaxLen bounds the change_request column so a pasted wall of
// text does not blow up spreadsheet cells. raw_text is never truncated.
const changeRequestMaxLen = 200

var (
	reStatusWords = regexp.MustCompile(`(?i)\b(terminated|termed|term|inactive|active)\b`)
	rePlanWords   = regexp.MustCompile(`(?i)\b(hmo|ppo|epo|medicare(?:\s*adv)?|commercial|comm)\b`)
	reChangeWords = regexp.MustCompile(`(?i)\b(please update|request to update|need eligibility|update elig|terminate member|please revise|eligibility chg)\b`)
	reNameLine    = regexp.MustCompile(`^[A-Z][A-Za-z'.\-]+(?: [A-Z][A-Za-z'.\-]+){1,3}$`)
	reLastFirst   = regexp.MustCompile(`\b([A-Z][A-Za-z'\-]+), ([A-Z][A-Za-z'\-]+)\b`)
)

// Extractor scans text for anchored field values and assembles records. One
// instance is safe for concurrent use.
type Extractor struct {
	fields     []compiledField
	classifier *sentiment.Classifier
}

func NewExtractor(classifier *sentiment.Classifier) *Extractor {
	if classifier == nil {
		classifier = sentiment.NewClassifier(sentiment.DefaultLexicon())
	}
	return &Extractor{
		fields:     compileFields(fieldTable()),
		classifier: classifier,
	}
}

// Extract maps text into a complete ExtractionRecord. Every record carries
// the full fixed field set; fields with no anchored value are empty strings.
// The only error is invalid provenance; extraction misses never fail.
// Provenance is taken as given: the caller names both the sender and the
// extractor identity, and a missing identifier is rejected, never filled in.
func (e *Extractor) Extract(text string, prov entity.Provenance) (*entity.ExtractionRecord, error) {
	if err := prov.Validate(); err != nil {
		return nil, common.WrapError(err, "invalid provenance")
	}

	rec := &entity.ExtractionRecord{
		RawText:        text,
		UserIdentifier: prov.UserIdentifier,
		ExtractedBy:    prov.ExtractedBy,
	}
	capturedAt := prov.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}
	rec.ExtractionTimestamp = capturedAt.Format(entity.TimestampFormat)
	rec.Stamp(time.Now())
	rec.SetSentiment(e.classifier.Classify(text))

	if strings.TrimSpace(text) == "" {
		return rec, nil
	}
	if tryStructured(text, rec) {
		e.fillChangeRequest(text, rec)
		return rec, nil
	}

	scanText := compact(text)
	values := scan(e.fields, scanText)

	rec.MemberID = values["member_id"]
	rec.DOB = values["dob"]
	rec.City = values["city"]
	rec.State = values["state"]
	rec.ZipCode = values["zip_code"]
	rec.AddressStatus = values["address_status"]
	rec.MemberStatus = values["member_status"]
	rec.StartDate = values["start_date"]
	rec.EndDate = values["end_date"]
	rec.HealthPlan = values["health_plan"]
	rec.ContractType = values["contract_type"]
	rec.Codes = values["codes"]
	rec.ChangeRequest = values["change_request"]

	e.fillName(text, values[fieldFullName], rec)
	e.fillAddress(scanText, values[fieldAddressBlock], rec)
	e.fillStatusFallback(scanText, rec)
	e.fillPlanFallback(scanText, rec)
	e.fillChangeRequest(text, rec)

	return rec, nil
}

// fillName splits an anchored full-name capture into first/last; without an
// anchor it falls back to a standalone capitalized-name line or a
// "Last, First" form, the common shapes in pasted rosters.
func (e *Extractor) fillName(text, anchored string, rec *entity.ExtractionRecord) {
	if anchored != "" {
		first, last := splitName(anchored)
		rec.FirstName, rec.LastName = first, last
		return
	}
	for _, line := range strings.Split(text, "\n") {
		line = compact(line)
		if reNameLine.MatchString(line) {
			rec.FirstName, rec.LastName = splitName(line)
			return
		}
	}
	if m := reLastFirst.FindStringSubmatch(text); m != nil {
		rec.FirstName, rec.LastName = m[2], m[1]
	}
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// fillAddress decomposes an anchored address block, or falls back to an
// unanchored street pattern scan. An explicit "address stays same" phrase
// sets address_status instead; it never fabricates address fields. Anchored
// city/state/zip captures always win over block decomposition.
func (e *Extractor) fillAddress(scanText, block string, rec *entity.ExtractionRecord) {
	if reAddressSame.MatchString(scanText) {
		if rec.AddressStatus == "" {
			rec.AddressStatus = constants.AddressStatusUnchanged
		}
		return
	}
	if block == "" {
		if m := reStreetBlock.FindStringSubmatch(scanText); m != nil {
			block = m[1]
		}
	}
	if block == "" {
		return
	}
	parts := parseAddressBlock(block)
	rec.Address = parts.Street
	if rec.City == "" {
		rec.City = parts.City
	}
	if rec.State == "" {
		rec.State = parts.State
	}
	if rec.ZipCode == "" {
		rec.ZipCode = parts.Zip
	}
}

// fillStatusFallback handles status words appearing without a status label,
// e.g. "member termed effective 12/31". The status word itself is the anchor.
// Terminated outranks inactive outranks active, matching how corrections are
// phrased.
func (e *Extractor) fillStatusFallback(scanText string, rec *entity.ExtractionRecord) {
	if rec.MemberStatus != "" {
		return
	}
	matches := reStatusWords.FindAllString(scanText, -1)
	if len(matches) == 0 {
		return
	}
	best := ""
	for _, m := range matches {
		switch NormalizeStatus(m) {
		case string(constants.MemberStatusTerminated):
			best = string(constants.MemberStatusTerminated)
		case string(constants.MemberStatusInactive):
			if best != string(constants.MemberStatusTerminated) {
				best = string(constants.MemberStatusInactive)
			}
		case string(constants.MemberStatusActive):
			if best == "" {
				best = string(constants.MemberStatusActive)
			}
		}
	}
	rec.MemberStatus = best
}

// fillPlanFallback catches bare plan tokens ("switching to PPO") when no plan
// label was present.
func (e *Extractor) fillPlanFallback(scanText string, rec *entity.ExtractionRecord) {
	if rec.HealthPlan != "" {
		return
	}
	if m := rePlanWords.FindString(scanText); m != "" {
		rec.HealthPlan = NormalizePlan(m)
	}
}

// fillChangeRequest backstops the anchored capture: when the message is
// itself the request ("Please update eligibility for ...") the whole message
// is the change request, bounded to keep cells readable.
func (e *Extractor) fillChangeRequest(text string, rec *entity.ExtractionRecord) {
	if rec.ChangeRequest != "" {
		rec.ChangeRequest = truncate(rec.ChangeRequest, changeRequestMaxLen)
		return
	}
	if reChangeWords.MatchString(text) {
		rec.ChangeRequest = truncate(compact(text), changeRequestMaxLen)
	}
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
