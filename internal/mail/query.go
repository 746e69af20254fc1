package mail

import (
	"strings"

	"opportunity-sync-go/internal/formatter"
)

// BuildQuery renders a filter as a Gmail search expression. Each present
// field contributes exactly one term; terms are joined with single
// spaces, which Gmail treats as AND.
func BuildQuery(filter Filter) string {
	var parts []string

	if filter.Label != "" {
		parts = append(parts, "label:"+filter.Label)
	}

	if filter.FromDomain != "" {
		parts = append(parts, "from:*@"+filter.FromDomain)
	}

	if filter.FromEmail != "" {
		parts = append(parts, "from:"+filter.FromEmail)
	}

	if !filter.After.IsZero() {
		parts = append(parts, "after:"+formatter.GmailSearchDate(filter.After))
	}

	if !filter.Before.IsZero() {
		parts = append(parts, "before:"+formatter.GmailSearchDate(filter.Before))
	}

	return strings.Join(parts, " ")
}
