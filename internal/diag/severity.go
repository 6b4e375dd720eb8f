package diag

import "strings"

// Severity defines the importance of a diagnostic. Higher is worse.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityLabels = [...]string{
	SevInfo:    "info",
	SevWarning: "warning",
	SevError:   "error",
}

// Label is the lower-case form used in single-line output.
func (s Severity) Label() string {
	if int(s) < len(severityLabels) {
		return severityLabels[s]
	}
	return "info"
}

func (s Severity) String() string {
	if int(s) < len(severityLabels) {
		return strings.ToUpper(severityLabels[s])
	}
	return "UNKNOWN"
}

// compiler level words; anything else is an error
var severityWords = map[string]Severity{
	"warning": SevWarning,
	"warn":    SevWarning,
	"info":    SevInfo,
	"note":    SevInfo,
	"remark":  SevInfo,
}

// ParseSeverity maps the level words used by shader compilers.
// Unknown words are treated as errors so nothing is downgraded by accident.
func ParseSeverity(word string) Severity {
	if s, ok := severityWords[strings.ToLower(strings.TrimSpace(word))]; ok {
		return s
	}
	return SevError
}
