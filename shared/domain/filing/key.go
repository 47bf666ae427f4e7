package filing

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	KeyPrefix         = "raw_filings"
	DefaultCompany    = "unknown"
	DefaultReportType = "10-k"

	// DefaultFilename is used when a source URL has no final path segment.
	DefaultFilename = "downloaded_file.pdf"
)

// BuildObjectKey returns raw_filings/{COMPANY}/{REPORT_TYPE}/{filename}.
// Empty or whitespace-only company and report type fall back to the
// defaults; any other value is upper-cased exactly as given.
func BuildObjectKey(company, reportType, filename string) string {
	if strings.TrimSpace(company) == "" {
		company = DefaultCompany
	}
	if strings.TrimSpace(reportType) == "" {
		reportType = DefaultReportType
	}

	return fmt.Sprintf("%s/%s/%s/%s",
		KeyPrefix,
		upper(company),
		upper(reportType),
		filename)
}

// upper applies full Unicode case mapping, so "ß" becomes "SS".
// A Caser holds state and is not safe for concurrent use.
func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

// FilenameFromURL returns the text after the last slash of the URL path as it
// appeared on the wire. A path ending in a slash, or no path at all, yields
// DefaultFilename.
func FilenameFromURL(u *url.URL) string {
	p := u.EscapedPath()
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	if p == "" {
		return DefaultFilename
	}
	return p
}

// AllowedContentType reports whether a fetched document's Content-Type is
// accepted. The check is a case-insensitive substring match so parameterised
// types such as "application/pdf; charset=binary" pass.
func AllowedContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "pdf") || strings.Contains(ct, "html")
}
