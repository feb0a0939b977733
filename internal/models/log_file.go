package models

import (
	"path"
	"strings"
	"time"
)

const reportDateLayout = "2006.01.02"

// LogFile identifies an access-log file and the date encoded in its name.
type LogFile struct {
	Name string
	Date time.Time
}

// IsGzip reports whether the file is gzip compressed.
func (f LogFile) IsGzip() bool {
	return path.Ext(f.Name) == ".gz"
}

// ReportKey returns the report file name for the log date, e.g. "report-2017.06.30.html".
func (f LogFile) ReportKey() string {
	return ReportKey(f.Date)
}

// ReportKey returns the report file name for date.
func ReportKey(date time.Time) string {
	return "report-" + date.Format(reportDateLayout) + ".html"
}

// ParseReportDate parses the "2006.01.02" date of a report file name.
func ParseReportDate(s string) (time.Time, error) {
	return time.Parse(reportDateLayout, s)
}

// ParseReportKey returns the date of a report file name produced by ReportKey.
func ParseReportKey(name string) (time.Time, bool) {
	day, ok := strings.CutPrefix(name, "report-")
	if !ok {
		return time.Time{}, false
	}
	day, ok = strings.CutSuffix(day, ".html")
	if !ok {
		return time.Time{}, false
	}
	date, err := ParseReportDate(day)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
