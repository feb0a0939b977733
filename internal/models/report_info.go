package models

import "time"

// ReportInfo describes a published report.
type ReportInfo struct {
	Date time.Time `json:"-"`
	Day  string    `json:"date"`
	Name string    `json:"name"`
}

// NewReportInfo builds the listing entry of the report published for date.
func NewReportInfo(date time.Time) ReportInfo {
	return ReportInfo{Date: date, Day: date.Format(reportDateLayout), Name: ReportKey(date)}
}
