package prompt

import (
	"strings"

	"deepsight-be/pkg/rag/intent"
)

// Instruction is the task a generated answer should fulfil.
type Instruction struct {
	Name     string
	Keywords []string
	Task     string
}

var (
	History = Instruction{
		Name:     "history",
		Keywords: []string{"history", "historical", "built", "founded", "dynasty", "origin", "when was", "who built", "ancient", "century"},
		Task:     "Explain the history of the heritage site: who built it, when, and the major events connected to it.",
	}
	Architecture = Instruction{
		Name:     "architecture",
		Keywords: []string{"architecture", "architectural", "design", "style", "structure", "carving", "sculpture", "gopuram", "dome", "pillar"},
		Task:     "Describe the architecture of the heritage site: its style, layout, materials and notable structural features.",
	}
	Significance = Instruction{
		Name:     "significance",
		Keywords: []string{"significance", "religious", "cultural", "spiritual", "sacred", "festival", "ritual", "worship", "deity", "importance"},
		Task:     "Explain the religious and cultural significance of the heritage site and the traditions associated with it.",
	}
	Nearby = Instruction{
		Name:     "nearby",
		Keywords: []string{"nearby", "near by", "around", "close to", "surrounding", "places to visit", "attractions"},
		Task:     "List notable heritage sites and attractions near the place mentioned, with one line about each.",
	}
	TravelTips = Instruction{
		Name:     "travel_tips",
		Keywords: []string{"tip", "tips", "best time", "how to visit", "dress", "ticket", "entry fee", "guide", "stay", "food", "plan"},
		Task:     "Give practical travel tips for visiting the heritage site: best season, entry, dress code and what to keep in mind.",
	}
	Popularity = Instruction{
		Name:     "popularity",
		Keywords: []string{"famous", "popular", "known for", "unesco", "why visit", "special", "unique", "best"},
		Task:     "Explain what the heritage site is famous for and why visitors find it special.",
	}
)

// Instructions is evaluated in order; the first instruction with a matching
// keyword wins.
var Instructions = []Instruction{History, Architecture, Significance, Nearby, TravelTips, Popularity}

// Infer picks the instruction for a working-language question. Questions that
// match nothing are treated as history questions.
func Infer(text string) Instruction {
	return InferFrom(Instructions, text)
}

func InferFrom(table []Instruction, text string) Instruction {
	lower := strings.ToLower(text)
	for _, in := range table {
		if intent.ContainsAny(lower, in.Keywords) {
			return in
		}
	}
	return History
}
