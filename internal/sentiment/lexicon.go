package sentiment

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/openelig/eligibility-tracker/constants"
)

// Entry is a weighted keyword. Keywords are matched case-insensitively as
// substrings so shorthand like "eff" and phrases like "should be inactive"
// both work against chat and OCR text.
type Entry struct {
	Keyword string `json:"keyword"`
	Weight  int    `json:"weight"`
}

// Lexicon holds the keyword sets for each label. It is plain data: tuning the
// classifier is a lexicon edit, not a code change.
type Lexicon struct {
	Positive []Entry `json:"positive"`
	Negative []Entry `json:"negative"`
	Neutral  []Entry `json:"neutral"`
}

// DefaultLexicon returns the built-in keyword sets. The negative set skews
// toward eligibility-operations complaint language (terms, typos, wrong
// effective dates); urgency markers carry extra weight so urgent complaints
// never land in Neutral.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Positive: []Entry{
			{Keyword: "thank", Weight: 1},
			{Keyword: "thanks", Weight: 1},
			{Keyword: "good", Weight: 1},
			{Keyword: "great", Weight: 1},
			{Keyword: "resolved", Weight: 1},
			{Keyword: "correct", Weight: 1},
			{Keyword: "ok", Weight: 1},
			{Keyword: "okay", Weight: 1},
			{Keyword: "completed", Weight: 1},
			{Keyword: "appreciate", Weight: 1},
		},
		Negative: []Entry{
			{Keyword: "error", Weight: 1},
			{Keyword: "issue", Weight: 1},
			{Keyword: "problem", Weight: 1},
			{Keyword: "wrong", Weight: 1},
			{Keyword: "termed", Weight: 1},
			{Keyword: "terminate", Weight: 1},
			{Keyword: "typo", Weight: 1},
			{Keyword: "fix", Weight: 1},
			{Keyword: "incorrect", Weight: 1},
			{Keyword: "should be inactive", Weight: 1},
			{Keyword: "should be", Weight: 1},
			{Keyword: "eff", Weight: 1},
			{Keyword: "urgent", Weight: 2},
			{Keyword: "asap", Weight: 2},
			{Keyword: "escalate", Weight: 2},
		},
		Neutral: []Entry{
			{Keyword: "fyi", Weight: 1},
			{Keyword: "noted", Weight: 1},
			{Keyword: "received", Weight: 1},
		},
	}
}

// LoadLexicon reads a lexicon from a JSON file. Missing label sets fall back
// to the built-in defaults so a partial override file is valid.
func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("read lexicon: %w", err)
	}
	lex := DefaultLexicon()
	var override Lexicon
	if err := json.Unmarshal(data, &override); err != nil {
		return Lexicon{}, fmt.Errorf("parse lexicon: %w", err)
	}
	if len(override.Positive) > 0 {
		lex.Positive = override.Positive
	}
	if len(override.Negative) > 0 {
		lex.Negative = override.Negative
	}
	if len(override.Neutral) > 0 {
		lex.Neutral = override.Neutral
	}
	return lex, nil
}

func (l Lexicon) entries(label constants.Sentiment) []Entry {
	switch label {
	case constants.SentimentPositive:
		return l.Positive
	case constants.SentimentNegative:
		return l.Negative
	default:
		return l.Neutral
	}
}
