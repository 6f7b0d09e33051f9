package fallback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpn/hpn-explainer/internal/domain"
)

func TestGenerate_SimpleScenario(t *testing.T) {
	post := domain.PostData{Title: "Why is the sky blue?", PostContent: "Asking for my kid."}

	got := Generate(post, domain.LevelSimple)

	assert.True(t, strings.HasPrefix(got, "Here's a super simple explanation like you're 5 years old:"))
	assert.Contains(t, got, `This Reddit post is about "Why is the sky blue?...".`)
	assert.Contains(t, got, "The main idea is Asking for my kid....")
	assert.True(t, strings.HasSuffix(got, CredentialNotice))
}

func TestGenerate_Truncation(t *testing.T) {
	title := strings.Repeat("t", 60)
	body := strings.Repeat("b", 250)

	got := Generate(domain.PostData{Title: title, PostContent: body}, domain.LevelAdvanced)

	assert.Contains(t, got, `"`+strings.Repeat("t", TitleEchoLen)+`..."`)
	assert.NotContains(t, got, strings.Repeat("t", TitleEchoLen+1))
	assert.Contains(t, got, "The main idea is "+strings.Repeat("b", BodyEchoLen)+"...")
	assert.NotContains(t, got, strings.Repeat("b", BodyEchoLen+1))
}

func TestGenerate_MultibyteTruncation(t *testing.T) {
	title := strings.Repeat("é", 50)

	got := Generate(domain.PostData{Title: title}, domain.LevelSimple)

	assert.Contains(t, got, `"`+strings.Repeat("é", TitleEchoLen)+`..."`)
}

func TestGenerate_EmptyPost(t *testing.T) {
	require.NotPanics(t, func() {
		got := Generate(domain.PostData{}, domain.Level("whatever"))
		assert.True(t, strings.HasPrefix(got, Intro(domain.LevelSimple)))
		assert.Contains(t, got, `about "...".`)
	})
}

func TestIntro(t *testing.T) {
	seen := map[string]bool{}
	for _, level := range domain.Levels {
		intro := Intro(level)
		assert.NotEmpty(t, intro)
		seen[intro] = true
	}
	assert.Len(t, seen, len(domain.Levels), "every level has its own intro")
	assert.Equal(t, Intro(domain.LevelSimple), Intro(domain.Level("unknown")))
}

func TestGenerate_Deterministic(t *testing.T) {
	post := domain.PostData{Title: "a", PostContent: "b"}
	assert.Equal(t, Generate(post, domain.LevelBeginner), Generate(post, domain.LevelBeginner))
}
