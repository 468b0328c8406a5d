package constants

// Sentiment is the closed label set shared between the classifier and any
// downstream reporting. Adding a label is a schema change.
type Sentiment string

// Stable values (store these exact strings in exported rows).
const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)
