package engine

import (
	"regexp"
	"strings"
)

// ============================================================================
// TEXT BUILDER — Quick facts and placeholder resolution
// ============================================================================

// QuickFactTemplates are the lines of the quick-facts panel.
var QuickFactTemplates = []string{
	"Total recorded attacks: {total}",
	"Year range: {year_range}",
	"Most dangerous state: {modal_state}",
	"Most common shark: {modal_species}",
	"Most common time period: {modal_time_period}",
}

// BuildQuickFacts renders the quick-facts panel for a set of facts.
func BuildQuickFacts(f Facts) []string {
	lines := make([]string, len(QuickFactTemplates))
	for i, tpl := range QuickFactTemplates {
		lines[i] = ResolvePlaceholders(tpl, f)
	}
	return lines
}

// ResolvePlaceholders substitutes fact values into a template.
// Unknown placeholders are stripped.
func ResolvePlaceholders(template string, f Facts) string {
	replacements := map[string]string{
		"{total}":             FormatInt(f.TotalCount),
		"{year_range}":        f.YearSpan.String(),
		"{year_min}":          nullIntText(f.YearSpan.Min, NotAvailable),
		"{year_max}":          nullIntText(f.YearSpan.Max, NotAvailable),
		"{modal_state}":       f.ModalState,
		"{modal_species}":     f.ModalSpecies,
		"{modal_time_period}": titleCase(f.ModalTimePeriod),
	}

	result := template
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return stripUnresolvedPlaceholders(result)
}

func titleCase(s string) string {
	if s == "" || s == NotAvailable {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var placeholderRegex = regexp.MustCompile(`\{[a-z_]+\}`)

func stripUnresolvedPlaceholders(text string) string {
	if !placeholderRegex.MatchString(text) {
		return text
	}
	cleaned := placeholderRegex.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimRight(cleaned, " .:-")
	if cleaned == "" {
		return text
	}
	return cleaned
}
