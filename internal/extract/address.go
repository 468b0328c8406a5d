package extract

import (
	"regexp"
	"strings"
)

// addressParts is a decomposed postal address block.
type addressParts struct {
	Street string
	City   string
	State  string
	Zip    string
}

var (
	// "address stays same" and friends: an explicit no-change marker, not an
	// address. Sets address_status, never the address fields.
	reAddressSame = regexp.MustCompile(`(?i)\b(?:address\s+stays\s+same|address\s+same\s+on\s+file|address\s+same|same\s+on\s+file|address\s+unchanged)\b`)

	// Unanchored street pattern for free-form text: house number, street words,
	// two-letter state, ZIP.
	reStreetBlock = regexp.MustCompile(`\b(\d{1,6} [A-Za-z][^,;|]*? [A-Za-z]{2}\.? ?\d{5}(?:-\d{4})?)\b`)

	reStateZipTail = regexp.MustCompile(`^([A-Za-z]{2})\.?,?$`)
	reZipToken     = regexp.MustCompile(`^\d{5}(?:-\d{4})?$`)
)

// streetSuffixes ends the street portion when splitting an uncomma'd block
// into street and city.
var streetSuffixes = map[string]struct{}{
	"st": {}, "street": {}, "ave": {}, "avenue": {}, "rd": {}, "road": {},
	"blvd": {}, "boulevard": {}, "dr": {}, "drive": {}, "ln": {}, "lane": {},
	"ct": {}, "court": {}, "way": {}, "pl": {}, "place": {}, "ter": {}, "terrace": {},
	"hwy": {}, "highway": {}, "pkwy": {}, "parkway": {}, "cir": {}, "circle": {},
}

// parseAddressBlock splits a captured address span into street, city, state
// and ZIP. Handles both comma'd ("100 Main St, Springfield, IL 62704") and
// run-together OCR forms ("100 Main St Springfield IL 62704"). Anything it
// cannot decompose is returned whole as Street so the capture is not lost.
func parseAddressBlock(block string) addressParts {
	block = compact(block)
	if block == "" {
		return addressParts{}
	}

	if parts := strings.Split(block, ","); len(parts) >= 2 {
		return parseCommaAddress(parts)
	}
	return parseRunTogetherAddress(block)
}

func parseCommaAddress(parts []string) addressParts {
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	out := addressParts{Street: parts[0]}
	last := parts[len(parts)-1]

	// last segment is usually "ST 12345" or just "12345"
	tokens := strings.Fields(last)
	switch {
	case len(tokens) >= 2 && reStateZipTail.MatchString(tokens[0]):
		out.State = strings.ToUpper(strings.TrimRight(tokens[0], ".,"))
		out.Zip = NormalizeZip(strings.Join(tokens[1:], ""))
	case len(tokens) == 1 && reZipToken.MatchString(tokens[0]):
		out.Zip = NormalizeZip(tokens[0])
	}
	if len(parts) >= 3 {
		out.City = parts[1]
	} else if out.State == "" && out.Zip == "" {
		out.City = last
	}
	return out
}

func parseRunTogetherAddress(block string) addressParts {
	tokens := strings.Fields(block)
	if len(tokens) < 4 {
		return addressParts{Street: block}
	}

	// peel ZIP and state off the tail
	zip := tokens[len(tokens)-1]
	if !reZipToken.MatchString(zip) {
		return addressParts{Street: block}
	}
	st := tokens[len(tokens)-2]
	if m := reStateZipTail.FindStringSubmatch(st); m != nil {
		st = m[1]
	} else {
		return addressParts{Street: block}
	}
	body := tokens[:len(tokens)-2]

	// street runs through the last street-suffix token; the rest is the city
	suffixIdx := -1
	for i, tok := range body {
		key := strings.ToLower(strings.TrimRight(tok, "."))
		if _, ok := streetSuffixes[key]; ok {
			suffixIdx = i
		}
	}
	out := addressParts{
		State: strings.ToUpper(st),
		Zip:   NormalizeZip(zip),
	}
	if suffixIdx >= 0 && suffixIdx < len(body)-1 {
		out.Street = strings.Join(body[:suffixIdx+1], " ")
		out.City = strings.Join(body[suffixIdx+1:], " ")
	} else if len(body) > 1 {
		// no recognizable suffix: last body token as city, rest as street
		out.Street = strings.Join(body[:len(body)-1], " ")
		out.City = body[len(body)-1]
	} else {
		out.Street = strings.Join(body, " ")
	}
	return out
}
