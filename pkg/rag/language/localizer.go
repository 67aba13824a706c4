package language

import (
	"context"
	"strings"

	"deepsight-be/internal/pkg/logger"
)

// ImageMarkup prefixes every line of an answer's image block.
const ImageMarkup = "![Image]("

// Localizer translates answers back into the caller's language.
type Localizer struct {
	translator Translator
	working    string
	logger     logger.ILogger
}

func NewLocalizer(translator Translator, working string, l logger.ILogger) *Localizer {
	if working == "" {
		working = Default
	}
	return &Localizer{translator: translator, working: Canonical(working), logger: l}
}

// Localize returns text in the target language. Lines from the first link or
// image line onwards are left untouched so URLs survive translation. Any
// failure returns the untranslated text.
func (l *Localizer) Localize(ctx context.Context, text, target string) string {
	target = Canonical(target)
	if target == "" || target == Unknown || target == l.working || strings.TrimSpace(text) == "" {
		return text
	}

	prose, tail := SplitLinks(text)
	if strings.TrimSpace(prose) == "" {
		return text
	}

	translated, err := l.translator.Translate(ctx, prose, l.working, target)
	if err != nil || translated == "" {
		l.logger.Warn("LANGUAGE", "Outbound translation failed, returning working language", map[string]interface{}{
			"target": target,
			"error":  errString(err),
		})
		return text
	}

	if tail == "" {
		return translated
	}
	return strings.TrimRight(translated, "\n") + "\n" + tail
}

// SplitLinks splits text at the first line that starts with a URL or image
// markup. The head keeps its trailing newline stripped.
func SplitLinks(text string) (string, string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "http://") ||
			strings.HasPrefix(trimmed, "https://") ||
			strings.HasPrefix(trimmed, ImageMarkup) {
			head := strings.TrimRight(strings.Join(lines[:i], "\n"), "\n")
			return head, strings.Join(lines[i:], "\n")
		}
	}
	return text, ""
}
