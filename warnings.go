package biblioperson

import (
	"strings"
)

// Warning is a non-fatal problem met while processing a document.
type Warning struct {
	// Kind is the warning category, such as "page_extraction" or
	// "segmentation_empty"
	Kind    string
	Message string
}

func (w Warning) String() string {
	if w.Kind == "" {
		return w.Message
	}
	return w.Kind + ": " + w.Message
}

// parseWarnings splits the "kind: message" entries recorded in document
// metadata.
func parseWarnings(entries []string) []Warning {
	if len(entries) == 0 {
		return nil
	}
	out := make([]Warning, len(entries))
	for i, e := range entries {
		kind, msg, ok := strings.Cut(e, ": ")
		if !ok || strings.ContainsRune(kind, ' ') {
			out[i] = Warning{Message: e}
			continue
		}
		out[i] = Warning{Kind: kind, Message: msg}
	}
	return out
}

// FormatWarnings joins warnings into one line for logging.
func FormatWarnings(warnings []Warning) string {
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}
