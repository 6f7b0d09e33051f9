// Package fallback produces the deterministic offline explanation used when
// no provider can answer.
package fallback

import (
	"fmt"

	"github.com/hpn/hpn-explainer/internal/domain"
)

const (
	// TitleEchoLen is the number of title runes echoed back.
	TitleEchoLen = 40

	// BodyEchoLen is the number of body runes echoed back.
	BodyEchoLen = 100

	// Ellipsis follows every truncated echo.
	Ellipsis = "..."

	// CredentialNotice closes every fallback explanation.
	CredentialNotice = "(Note: To get real AI explanations, please add your API key in the extension options page)"
)

var intros = map[domain.Level]string{
	domain.LevelSimple:       "Here's a super simple explanation like you're 5 years old:",
	domain.LevelNonTechnical: "Here's an explanation without any technical jargon:",
	domain.LevelBeginner:     "Here's an explanation for someone new to this topic:",
	domain.LevelAdvanced:     "Here's an in-depth explanation of this post:",
	domain.LevelMoreContext:  "Here's an explanation with some extra background context:",
	domain.LevelCustom:       "Here's an explanation tailored to your chosen audience:",
}

// Intro returns the opening line for level; unknown levels use the simple one.
func Intro(level domain.Level) string {
	if intro, ok := intros[level]; ok {
		return intro
	}
	return intros[domain.LevelSimple]
}

// Generate builds the offline explanation for post. It never fails.
func Generate(post domain.PostData, level domain.Level) string {
	return fmt.Sprintf(`%s

This Reddit post is about "%s%s".

The main idea is %s%s

Based on the comments, people seem to be discussing various aspects of this topic. In a real version of this extension, this would be a thoughtful AI-generated explanation tailored to your selected comprehension level.

A full implementation would connect to an AI service like OpenAI's GPT to provide accurate, helpful explanations of Reddit posts at your preferred level of detail.

%s`,
		Intro(level),
		truncate(post.Title, TitleEchoLen), Ellipsis,
		truncate(post.PostContent, BodyEchoLen), Ellipsis,
		CredentialNotice,
	)
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
