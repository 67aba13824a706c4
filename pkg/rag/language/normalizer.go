package language

import (
	"context"

	"deepsight-be/internal/pkg/logger"
)

// Normalizer brings a raw query into the working language.
type Normalizer struct {
	detector   Detector
	translator Translator
	working    string
	logger     logger.ILogger
}

func NewNormalizer(detector Detector, translator Translator, working string, l logger.ILogger) *Normalizer {
	if working == "" {
		working = Default
	}
	return &Normalizer{
		detector:   detector,
		translator: translator,
		working:    Canonical(working),
		logger:     l,
	}
}

// Working is the language every downstream stage operates in.
func (n *Normalizer) Working() string {
	return n.working
}

// Normalize returns the working-language text and the detected source tag.
// It never fails: a failed detection assumes the default language and a failed
// translation keeps the original text as if it were already in the working
// language.
func (n *Normalizer) Normalize(ctx context.Context, text string) (string, string) {
	source, err := n.detector.Detect(ctx, text)
	if err != nil || source == "" || source == Unknown {
		n.logger.Warn("LANGUAGE", "Language detection failed, assuming default", map[string]interface{}{
			"error": errString(err),
		})
		source = Default
	}
	source = Canonical(source)

	if source == n.working {
		return text, source
	}

	translated, err := n.translator.Translate(ctx, text, source, n.working)
	if err != nil || translated == "" {
		n.logger.Warn("LANGUAGE", "Inbound translation failed, using original text", map[string]interface{}{
			"source": source,
			"error":  errString(err),
		})
		return text, n.working
	}

	n.logger.Debug("LANGUAGE", "Query normalized", map[string]interface{}{
		"source": source,
		"target": n.working,
	})
	return translated, source
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
