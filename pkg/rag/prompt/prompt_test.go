package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"Who built the Brihadeeswarar Temple?", "history"},
		{"describe the carvings of konark", "architecture"},
		{"what is the religious importance of rameswaram", "significance"},
		{"places to visit around hampi", "nearby"},
		{"best time to visit mahabalipuram", "travel_tips"},
		{"how to visit ellora caves", "travel_tips"},
		{"why visit hampi", "popularity"},
		{"why is taj mahal famous", "popularity"},
		{"tell me about golconda", "history"},
		// history is checked before architecture
		{"history and architecture of halebidu", "history"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Infer(tt.query).Name)
		})
	}
}

func TestInstructionsKeywordsAreNotShadowed(t *testing.T) {
	for i, in := range Instructions {
		for _, kw := range in.Keywords {
			for _, earlier := range Instructions[:i] {
				for _, ekw := range earlier.Keywords {
					assert.NotContains(t, kw, ekw, "%s keyword %q is caught by %s", in.Name, kw, earlier.Name)
				}
			}
			assert.Equal(t, in.Name, Infer(kw).Name, "keyword %q", kw)
		}
	}
}

func TestBuild(t *testing.T) {
	p := NewBuilder(Architecture, "describe the gopuram").Build()

	assert.Contains(t, p, "<task>\n")
	assert.Contains(t, p, Architecture.Task)
	assert.Contains(t, p, "<question>\ndescribe the gopuram\n</question>")
	assert.True(t, len(p) > len(AnswerCue))
	assert.Equal(t, AnswerCue, p[len(p)-len(AnswerCue):])
}

func TestStripEcho(t *testing.T) {
	p := NewBuilder(History, "who built hampi").Build()

	assert.Equal(t, "The Vijayanagara kings.", StripEcho(p, p+" The Vijayanagara kings."))
	assert.Equal(t, "The Vijayanagara kings.", StripEcho(p, "  The Vijayanagara kings.\n"))
	assert.Equal(t, "Kings.", StripEcho(p, "<question>\nwho\n</question>\n\nAnswer: Kings."))
}
