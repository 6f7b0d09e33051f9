package domain

// MaxTopComments is the number of comments the extractor collects and the
// prompt renders.
const MaxTopComments = 5

// PostData is the scraped forum post handed over by the content extractor.
type PostData struct {
	Title       string   `json:"title"`
	PostContent string   `json:"postContent"`
	TopComments []string `json:"topComments"`
}

// Comments returns at most MaxTopComments comments, in order.
func (p PostData) Comments() []string {
	if len(p.TopComments) > MaxTopComments {
		return p.TopComments[:MaxTopComments]
	}
	return p.TopComments
}

// Level is the requested comprehension tier for an explanation.
type Level string

const (
	LevelSimple       Level = "simple"
	LevelNonTechnical Level = "non-technical"
	LevelBeginner     Level = "beginner"
	LevelAdvanced     Level = "advanced"
	LevelMoreContext  Level = "more-context"
	LevelCustom       Level = "custom"
)

// Levels lists every recognised level in display order.
var Levels = []Level{
	LevelSimple,
	LevelNonTechnical,
	LevelBeginner,
	LevelAdvanced,
	LevelMoreContext,
	LevelCustom,
}

// IsKnown reports whether l is one of the fixed levels.
func (l Level) IsKnown() bool {
	for _, known := range Levels {
		if l == known {
			return true
		}
	}
	return false
}
