// Package prompt renders scraped posts into language-model prompts.
package prompt

import (
	"strings"

	"github.com/hpn/hpn-explainer/internal/domain"
)

// audiences maps each fixed level to the phrase used in prompts.
var audiences = map[domain.Level]string{
	domain.LevelSimple:       "a 5-year-old (ELI5)",
	domain.LevelNonTechnical: "a non-technical person",
	domain.LevelBeginner:     "a beginner in this topic",
	domain.LevelAdvanced:     "someone looking for an in-depth explanation",
	domain.LevelMoreContext:  "someone who needs more context",
}

// DescribeAudience returns the audience phrase for level. For LevelCustom the
// caller-supplied text is used, falling back to the more-context phrase when
// it is blank. Unrecognised levels get the simple phrase.
func DescribeAudience(level domain.Level, custom string) string {
	if level == domain.LevelCustom {
		if text := strings.TrimSpace(custom); text != "" {
			return text
		}
		return audiences[domain.LevelMoreContext]
	}
	if desc, ok := audiences[level]; ok {
		return desc
	}
	return audiences[domain.LevelSimple]
}
