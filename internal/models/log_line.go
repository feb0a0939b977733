package models

// LogLine is the part of one access-log line the analyzer keeps.
// URL is byte-exact as captured, including any whitespace before the protocol token.
// RequestTime is left as text; it is parsed to a decimal by the aggregator.
type LogLine struct {
	URL         string
	RequestTime string
	UserAgent   string
}
