package models

// ReportRow is one display-ready line of the report table. Numbers are rounded to
// three decimal places; field order and JSON names are read by the report template.
type ReportRow struct {
	URL       string  `json:"url"`
	Count     int64   `json:"count"`
	CountPerc float64 `json:"count_perc"`
	TimeAvg   float64 `json:"time_avg"`
	TimeMax   float64 `json:"time_max"`
	TimeMed   float64 `json:"time_med"`
	TimePerc  float64 `json:"time_perc"`
	TimeSum   float64 `json:"time_sum"`
}
