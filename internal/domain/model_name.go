package domain

import (
	"errors"
	"regexp"
	"strings"
)

// UnknownModel is stored when a model name cannot be derived from a URL.
const UnknownModel = "unknown"

// ExtractModelName derives a drone model identifier from a spec page URL.
// Vendor spec pages use the layout .../<model-name>/specs, so the
// second-to-last path segment is the model name. Malformed input yields
// UnknownModel rather than an error; ingestion must not fail on it.
func ExtractModelName(rawURL string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(rawURL), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 {
		return UnknownModel
	}
	name := parts[len(parts)-2]
	if name == "" || strings.Contains(name, ".") || strings.Contains(name, ":") {
		return UnknownModel
	}
	return name
}

// NormalizeModelMentions rewrites mentions of known model names in a
// question into the canonical hyphen-joined form used as model_name in
// the store ("Mavic 4 Pro" -> "mavic-4-pro"). An optional vendor prefix
// such as "DJI " is folded into the match. The rewritten text is only
// ever used for embedding; the user's original wording is preserved for
// the prompt.
func NormalizeModelMentions(question string, models []string) string {
	normalized := question
	for _, model := range models {
		if model == "" || model == UnknownModel {
			continue
		}
		re, err := modelMentionPattern(model)
		if err != nil {
			continue
		}
		normalized = re.ReplaceAllString(normalized, model)
	}
	return normalized
}

func modelMentionPattern(model string) (*regexp.Regexp, error) {
	segments := strings.Split(strings.ToLower(model), "-")
	quoted := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(seg))
	}
	if len(quoted) == 0 {
		return nil, errors.New("empty model name")
	}
	pattern := `(?i)\b(?:dji[\s-]*)?` + strings.Join(quoted, `[\s-]*`) + `\b`
	return regexp.Compile(pattern)
}
