package oracle

import "strings"

// Field names one value to extract and the labels that may carry it.
type Field struct {
	Key    string   // Result key
	Labels []string // Accepted labels, any spelling
}

// ExtractLabels scans text line by line for "Label: value" pairs. Labels match
// case-insensitively with underscores, markdown bullets and bold markers
// ignored. The first non-empty value per field wins; absent fields are absent
// from the result.
func ExtractLabels(text string, fields []Field) map[string]string {
	lookup := make(map[string]string)
	for _, f := range fields {
		for _, l := range f.Labels {
			lookup[normalizeLabel(l)] = f.Key // Normalized label to field key
		}
	}
	out := make(map[string]string, len(fields))
	for _, line := range strings.Split(text, "\n") {
		label, value, ok := splitLabeled(line)
		if !ok {
			continue // Not a labeled line
		}
		key, known := lookup[label]
		if !known {
			continue // Unrequested label
		}
		if _, seen := out[key]; seen {
			continue // First value wins
		}
		out[key] = value
	}
	return out
}

// WithDefaults fills every missing or empty key from defaults.
func WithDefaults(values, defaults map[string]string) map[string]string {
	out := make(map[string]string, len(defaults))
	for k, v := range defaults {
		out[k] = v // Start from defaults
	}
	for k, v := range values {
		if v != "" {
			out[k] = v // Non-empty values override
		}
	}
	return out
}

func splitLabeled(line string) (label, value string, ok bool) {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-*#> \t") // Drop markdown bullets and quotes
	i := strings.Index(line, ":")
	if i <= 0 {
		return "", "", false // No label before the colon
	}
	label = normalizeLabel(line[:i])
	value = strings.TrimSpace(strings.Trim(strings.TrimSpace(line[i+1:]), "*"))
	if label == "" || value == "" {
		return "", "", false
	}
	return label, value, true
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.Trim(strings.TrimSpace(s), "*_ "))
	s = strings.ReplaceAll(s, "_", " ")         // aura_color matches Aura Color
	return strings.Join(strings.Fields(s), " ") // Collapse inner whitespace
}

// NormalizeTags lowercases a comma-separated tag list and rejoins it with ", ".
func NormalizeTags(csv string) string {
	var tags []string
	for _, t := range strings.Split(csv, ",") {
		t = strings.ToLower(strings.Trim(strings.TrimSpace(t), "#.")) // Drop hashtags and trailing dots
		if t != "" {
			tags = append(tags, t)
		}
	}
	return strings.Join(tags, ", ")
}
