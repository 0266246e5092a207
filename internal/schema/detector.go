// Package schema maps inconsistently named spreadsheet columns onto canonical fields.
package schema

import (
	"strings"

	"github.com/livecommerce/stream-analyzer/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"
)

// NormalizeLabel folds full-width characters and case so rules can use plain substrings.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(label)))
}

// Detect returns the field mapping for columns under profile. It fails with a
// *SchemaError when a required field has no matching column.
func Detect(columns []string, profile Profile) (models.FieldMapping, error) {
	labels := make([]string, len(columns))
	for i, c := range columns {
		labels[i] = NormalizeLabel(c)
	}

	mapping := make(models.FieldMapping)
	for _, field := range profile.fields() {
		match, ok := bestColumn(columns, labels, profile.rulesFor(field))
		if !ok {
			continue
		}
		mapping[field] = match
		logrus.Debugf("schema[%s]: %s <- %q (priority %d)", profile.Name, field, match.Column, match.Priority)
	}

	for _, field := range profile.Required {
		if !mapping.Has(field) {
			return nil, &SchemaError{Profile: profile.Name, Field: string(field), Available: columns}
		}
	}

	if len(profile.RequireAny) > 0 {
		found := false
		for _, field := range profile.RequireAny {
			if mapping.Has(field) {
				found = true
				break
			}
		}
		if !found {
			names := make([]string, len(profile.RequireAny))
			for i, f := range profile.RequireAny {
				names[i] = string(f)
			}
			return nil, &SchemaError{Profile: profile.Name, Field: strings.Join(names, "|"), Available: columns}
		}
	}

	return mapping, nil
}

// bestColumn scores each column by the highest-priority rule it satisfies and
// returns the best one. The leftmost column wins ties.
func bestColumn(columns, labels []string, rules []Rule) (models.FieldMatch, bool) {
	var best models.FieldMatch
	found := false

	for i, label := range labels {
		rule, ok := strongestRule(label, rules)
		if !ok {
			continue
		}
		if !found || rule.Priority > best.Priority {
			best = models.FieldMatch{Column: columns[i], Unit: rule.Unit, Priority: rule.Priority}
			found = true
		}
	}

	return best, found
}

func strongestRule(label string, rules []Rule) (Rule, bool) {
	var best Rule
	found := false
	for _, r := range rules {
		if !strings.Contains(label, r.Pattern) {
			continue
		}
		if !found || r.Priority > best.Priority {
			best = r
			found = true
		}
	}
	return best, found
}
