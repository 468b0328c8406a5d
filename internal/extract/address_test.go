package extract

import (
	"testing"
)

func TestParseAddressBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected addressParts
	}{
		{
			name:     "comma form",
			input:    "100 Main St, Springfield, IL 62704",
			expected: addressParts{Street: "100 Main St", City: "Springfield", State: "IL", Zip: "62704"},
		},
		{
			name:     "run together ocr form",
			input:    "100 Main St Springfield IL 62704",
			expected: addressParts{Street: "100 Main St", City: "Springfield", State: "IL", Zip: "62704"},
		},
		{
			name:     "zip plus four",
			input:    "4821 Elm Ave, Denver, CO 80203-1122",
			expected: addressParts{Street: "4821 Elm Ave", City: "Denver", State: "CO", Zip: "802031122"},
		},
		{
			name:     "street and city only",
			input:    "100 Main St, Springfield",
			expected: addressParts{Street: "100 Main St", City: "Springfield"},
		},
		{
			name:     "multi word city without suffix hint",
			input:    "77 Sunset Blvd Los Angeles CA 90028",
			expected: addressParts{Street: "77 Sunset Blvd", City: "Los Angeles", State: "CA", Zip: "90028"},
		},
		{
			name:     "no zip keeps block as street",
			input:    "100 Main St Springfield",
			expected: addressParts{Street: "100 Main St Springfield"},
		},
		{
			name:     "whitespace collapsed",
			input:    "  100  Main   St,  Springfield,  IL  62704 ",
			expected: addressParts{Street: "100 Main St", City: "Springfield", State: "IL", Zip: "62704"},
		},
		{
			name:     "empty",
			input:    "",
			expected: addressParts{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseAddressBlock(tt.input); got != tt.expected {
				t.Errorf("parseAddressBlock(%q) = %+v, want %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAddressSameMarker(t *testing.T) {
	for _, phrase := range []string{
		"address stays same",
		"Address same on file",
		"address unchanged",
	} {
		if !reAddressSame.MatchString(phrase) {
			t.Errorf("expected %q to match the no-change marker", phrase)
		}
	}
	if reAddressSame.MatchString("address 100 Main St") {
		t.Error("a real address must not match the no-change marker")
	}
}
