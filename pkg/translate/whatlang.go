package translate

import (
	"context"
	"strings"

	"github.com/abadojack/whatlanggo"

	"deepsight-be/pkg/rag/language"
)

// WhatlangDetector detects languages locally with trigram statistics.
// Results below MinConfidence that whatlanggo does not consider reliable are
// reported as unknown.
type WhatlangDetector struct {
	MinConfidence float64
}

var _ language.Detector = (*WhatlangDetector)(nil)

func NewWhatlangDetector(minConfidence float64) *WhatlangDetector {
	return &WhatlangDetector{MinConfidence: minConfidence}
}

func (d *WhatlangDetector) Detect(_ context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return language.Unknown, nil
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() && info.Confidence < d.MinConfidence {
		return language.Unknown, nil
	}

	code := info.Lang.Iso6391()
	if code == "" {
		return language.Unknown, nil
	}
	return code, nil
}
