// Package sentiment implements the lexicon-based sentiment classifier for
// chat and OCR text. Classification is a pure function of the input text and
// the lexicon: no I/O, no randomness, safe to call concurrently.
package sentiment

import (
	"strings"

	"github.com/openelig/eligibility-tracker/constants"
)

// tiePriority breaks score ties. Negative outranks Positive so an ambiguous
// or urgent complaint is never silently classified away from Negative.
var tiePriority = []constants.Sentiment{
	constants.SentimentNegative,
	constants.SentimentPositive,
	constants.SentimentNeutral,
}

type Classifier struct {
	lexicon Lexicon
}

// NewClassifier builds a classifier over the given lexicon.
func NewClassifier(lexicon Lexicon) *Classifier {
	return &Classifier{lexicon: lexicon}
}

// Classify scores text into a sentiment label. Empty or unrecognized input
// yields Neutral. It never fails.
func (c *Classifier) Classify(text string) constants.Sentiment {
	if strings.TrimSpace(text) == "" {
		return constants.SentimentNeutral
	}
	t := strings.ToLower(text)

	best := constants.SentimentNeutral
	bestScore := 0
	for _, label := range tiePriority {
		score := scoreEntries(t, c.lexicon.entries(label))
		if score > bestScore {
			best = label
			bestScore = score
		}
	}
	if bestScore == 0 {
		return constants.SentimentNeutral
	}
	return best
}

func scoreEntries(lower string, entries []Entry) int {
	score := 0
	for _, e := range entries {
		if e.Keyword == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(e.Keyword)) {
			w := e.Weight
			if w <= 0 {
				w = 1
			}
			score += w
		}
	}
	return score
}
