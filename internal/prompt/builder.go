package prompt

import (
	"fmt"
	"strings"

	"github.com/hpn/hpn-explainer/internal/domain"
)

// Build renders post into the user prompt for the given level. The output is
// a pure function of its arguments.
func Build(post domain.PostData, level domain.Level, custom string) string {
	audience := DescribeAudience(level, custom)

	var b strings.Builder
	fmt.Fprintf(&b, "Explain the following Reddit post as if I were %s:\n\n", audience)
	fmt.Fprintf(&b, "Title: %s\n\n", post.Title)
	fmt.Fprintf(&b, "Post Content: %s\n\n", post.PostContent)
	b.WriteString("Top Comments:\n")
	for i, comment := range post.Comments() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, comment)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Please provide a clear, concise explanation that's appropriate for %s.\n", audience)
	b.WriteString("Your explanation should be friendly and conversational.\n")
	b.WriteString("Simplify complex ideas but don't be condescending.\n")
	b.WriteString("Focus on the main point of the post and the key insights from comments.\n")

	return b.String()
}

// SystemInstruction is the system-role message for chat-style envelopes.
func SystemInstruction(level domain.Level, custom string) string {
	return fmt.Sprintf(
		"You are a helpful assistant that explains Reddit posts in simple terms. "+
			"When responding, use language appropriate for %s.",
		DescribeAudience(level, custom),
	)
}

// AudienceSuffix is appended to the prompt for envelopes that carry a single
// user message and no system role.
func AudienceSuffix(level domain.Level, custom string) string {
	return fmt.Sprintf("\n\nExplain this Reddit post as if I were %s.", DescribeAudience(level, custom))
}
