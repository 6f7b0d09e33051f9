package domain

import "testing"

func TestProviderConfig_UseMock(t *testing.T) {
	tests := []struct {
		name       string
		credential string
		want       bool
	}{
		{"empty", "", true},
		{"whitespace", " \t\n", true},
		{"set", "sk-abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ProviderConfig{Credential: tt.credential}
			if got := cfg.UseMock(); got != tt.want {
				t.Errorf("UseMock() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProviderConfig_ModelOr(t *testing.T) {
	cfg := ProviderConfig{}
	if got := cfg.ModelOr("gpt-3.5-turbo"); got != "gpt-3.5-turbo" {
		t.Errorf("ModelOr() = %s, want default", got)
	}

	cfg.Model = "  gpt-4o  "
	if got := cfg.ModelOr("gpt-3.5-turbo"); got != "gpt-4o" {
		t.Errorf("ModelOr() = %s, want trimmed override", got)
	}
}

func TestProviderType_IsKnown(t *testing.T) {
	for _, p := range KnownProviders {
		if !p.IsKnown() {
			t.Errorf("%s should be known", p)
		}
	}
	for _, p := range []ProviderType{"", "OpenAI", "mistral"} {
		if p.IsKnown() {
			t.Errorf("%q should not be known", p)
		}
	}
}

func TestPostData_Comments(t *testing.T) {
	post := PostData{TopComments: []string{"1", "2", "3", "4", "5", "6", "7"}}

	got := post.Comments()
	if len(got) != MaxTopComments {
		t.Fatalf("len(Comments()) = %d, want %d", len(got), MaxTopComments)
	}
	if got[0] != "1" || got[4] != "5" {
		t.Errorf("Comments() = %v, want first five in order", got)
	}

	if got := (PostData{}).Comments(); len(got) != 0 {
		t.Errorf("Comments() on empty post = %v", got)
	}
}

func TestLevel_IsKnown(t *testing.T) {
	if !LevelMoreContext.IsKnown() {
		t.Error("more-context should be known")
	}
	if Level("pirate").IsKnown() {
		t.Error("pirate should not be known")
	}
}

func TestResult_IsFallback(t *testing.T) {
	if !(Result{Source: SourceFallback}).IsFallback() {
		t.Error("fallback source should report IsFallback")
	}
	if (Result{Source: "openai"}).IsFallback() {
		t.Error("provider source should not report IsFallback")
	}
}
