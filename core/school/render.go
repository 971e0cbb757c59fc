package school

import (
	"strings"

	"github.com/trezcool/masomo-sync/core/entity"
)

// Style hints for the host's table rendering.
const (
	StyleSuccess   = "badge-success"
	StyleDanger    = "badge-danger"
	StyleWarning   = "badge-warning"
	StyleInfo      = "badge-info"
	StyleSecondary = "badge-secondary"
)

const excerptLen = 80

func col(name, text string) entity.Column {
	return entity.Column{Name: name, Text: text}
}

func badge(name, text, style string) entity.Column {
	return entity.Column{Name: name, Text: text, Style: style}
}

func row(cols ...entity.Column) entity.RowView {
	return entity.RowView{Columns: cols}
}

// excerpt shortens s to n runes, marking the cut with an ellipsis.
func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}

// fullName joins the non-empty parts with a space.
func fullName(parts ...string) string {
	var name []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			name = append(name, p)
		}
	}
	return strings.Join(name, " ")
}

// truthy reads the boolean flags the backend sends as 1/0, "1"/"0" or true/false.
func truthy(rec entity.Record, field string) bool {
	switch strings.ToLower(rec.String(field)) {
	case "1", "true", "si", "sí", "yes":
		return true
	default:
		return false
	}
}

// dateRange renders "start – end", or whichever side is known.
func dateRange(start, end string) string {
	switch {
	case start != "" && end != "":
		return start + " – " + end
	case start != "":
		return start
	default:
		return end
	}
}

func label(labels map[string]string, value string) string {
	if l, ok := labels[value]; ok {
		return l
	}
	return value
}
