package device

import "strings"

// ResponseClassifier decides what a device's echoed text means. The device
// speaks a prompt-driven text protocol with no structured status codes, so
// success and failure are detected by scanning for marker substrings. All
// marker matching lives behind this interface so the rules can change (or a
// structured transport can replace them) without touching the session state
// machine.
type ResponseClassifier interface {
	// IsError reports whether output contains a command rejection echo.
	IsError(output string) bool
	// IsComplete reports whether output contains the commit completion marker.
	IsComplete(output string) bool
}

// MarkerClassifier classifies responses by case-insensitive substring match.
type MarkerClassifier struct {
	ErrorMarkers    []string
	CompleteMarkers []string
}

// NewJunosClassifier returns the marker set for Junos CLI sessions.
func NewJunosClassifier() *MarkerClassifier {
	return &MarkerClassifier{
		ErrorMarkers:    []string{"error", "unknown command"},
		CompleteMarkers: []string{"complete"},
	}
}

// IsError reports whether output contains any error marker.
func (c *MarkerClassifier) IsError(output string) bool {
	return containsAny(output, c.ErrorMarkers)
}

// IsComplete reports whether output contains any completion marker.
func (c *MarkerClassifier) IsComplete(output string) bool {
	return containsAny(output, c.CompleteMarkers)
}

func containsAny(output string, markers []string) bool {
	lower := strings.ToLower(output)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
