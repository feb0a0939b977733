package parsers

import (
	"regexp"

	"log-analyzer/internal/models"
)

// uiShortRe matches the nginx "ui_short" log format:
//
//	log_format ui_short '$remote_addr $remote_user $http_x_real_ip [$time_local] "$request" '
//	                    '$status $body_bytes_sent "$http_referer" '
//	                    '"$http_user_agent" "$http_x_forwarded_for" "$http_X_REQUEST_ID" "$http_X_RB_USER" '
//	                    '$request_time';
//
// The match is anchored at the start of the line only. The url group is greedy and stops
// right before the protocol token, so the space separating them stays part of the url.
var uiShortRe = regexp.MustCompile(`(?i)^` +
	`(?P<ipaddress>\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}) ` +
	`(?P<ruser>.+) ` +
	`(?P<xrip>.+) ` +
	`\[(?P<dateandtime>\d{2}/[a-z]{3}/\d{4}:\d{2}:\d{2}:\d{2} [+-]\d{4})\] ` +
	`"(?:GET|POST|HEAD|PUT) (?P<url>.+)http/1\.." ` +
	`(?P<statuscode>\d{3}) ` +
	`(?P<bytessent>\d+) ` +
	`"(?P<referer>-|.+)" ` +
	`"(?P<useragent>.+)" ` +
	`"(?P<forwardedfor>.+)" ` +
	`"(?P<requestid>.+)" ` +
	`"(?P<rbuser>.+)" ` +
	`(?P<requesttime>\d+.\d+)`)

var (
	urlIndex         = uiShortRe.SubexpIndex("url")
	userAgentIndex   = uiShortRe.SubexpIndex("useragent")
	requestTimeIndex = uiShortRe.SubexpIndex("requesttime")
)

type LineParser interface {
	// Parse extracts the url, request time and user agent of one log line.
	// It returns false when the line does not match the log format.
	Parse(line string) (*models.LogLine, bool)
}

type uiShortParser struct{}

func NewLineParser() LineParser {
	return &uiShortParser{}
}

func (p *uiShortParser) Parse(line string) (*models.LogLine, bool) {
	matches := uiShortRe.FindStringSubmatch(line)
	if matches == nil {
		return nil, false
	}

	return &models.LogLine{
		URL:         matches[urlIndex],
		RequestTime: matches[requestTimeIndex],
		UserAgent:   matches[userAgentIndex],
	}, true
}
