package directions

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"deepsight-be/internal/pkg/logger"
	"deepsight-be/pkg/rag/state"
)

const (
	mapsBase = "https://www.google.com/maps"

	NotFoundMessage = "Sorry, I could not find the place you are looking for."
)

// Localizer translates the finished answer. Satisfied by language.Localizer.
type Localizer interface {
	Localize(ctx context.Context, text, target string) string
}

type Resolver struct {
	extractor *Extractor
	localizer Localizer
	logger    logger.ILogger
}

func NewResolver(extractor *Extractor, localizer Localizer, l logger.ILogger) *Resolver {
	return &Resolver{extractor: extractor, localizer: localizer, logger: l}
}

// Resolve always terminates. A question without a recognisable place gets a
// polite message rather than an error. The answer is localized here so the
// link is never passed through translation twice.
func (r *Resolver) Resolve(ctx context.Context, c state.Classified) (state.Step, error) {
	var ext Extraction
	if strings.TrimSpace(c.Q.Origin) != "" && strings.TrimSpace(c.Q.Destination) != "" {
		ext = Extraction{Origin: Title(c.Q.Origin), Destination: Title(c.Q.Destination), Method: MethodExplicit}
	} else {
		ext = r.extractor.Extract(c.Q.WorkingText)
	}

	r.logger.Info("DIRECTIONS", "Places extracted", map[string]interface{}{
		"method":      string(ext.Method),
		"origin":      ext.Origin,
		"destination": ext.Destination,
		"place":       ext.Place,
		"candidates":  ext.Candidates,
	})

	answer := Answer(ext)
	res := c.Resolve(r.localizer.Localize(ctx, answer, c.Q.Language), nil)
	res.Localized = true
	return res, nil
}

// Answer renders the working-language response for an extraction.
func Answer(ext Extraction) string {
	switch {
	case ext.IsRoute():
		return fmt.Sprintf("Here are the directions from %s to %s:\n%s", ext.Origin, ext.Destination, DirectionsURL(ext.Origin, ext.Destination))
	case ext.Place != "":
		return fmt.Sprintf("Here is %s on the map:\n%s", ext.Place, PlaceURL(ext.Place))
	default:
		return NotFoundMessage
	}
}

func DirectionsURL(origin, destination string) string {
	return mapsBase + "/dir/" + url.PathEscape(origin) + "/" + url.PathEscape(destination)
}

func PlaceURL(place string) string {
	return mapsBase + "/place/" + url.PathEscape(place)
}
