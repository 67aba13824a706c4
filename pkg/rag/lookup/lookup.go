// Package lookup answers opening-hours questions straight from the facility
// corpus, without involving the generative model.
package lookup

import (
	"context"
	"strings"
	"time"

	"deepsight-be/internal/pkg/logger"
	"deepsight-be/pkg/rag/intent"
	"deepsight-be/pkg/rag/state"
)

// TopK is the number of records requested from the index. Only the best one is
// inspected.
const TopK = 3

// Record is a facility as seen by the lookup stage.
type Record struct {
	Name     string
	Location string
	FreeText string
}

// Match is a record with its similarity score, best first.
type Match struct {
	Record Record
	Score  float64
}

// Index performs a similarity search over the corpus.
type Index interface {
	TopK(ctx context.Context, query string, k int) ([]Match, error)
}

type Resolver struct {
	index   Index
	timeout time.Duration
	logger  logger.ILogger
}

func NewResolver(index Index, timeout time.Duration, l logger.ILogger) *Resolver {
	return &Resolver{index: index, timeout: timeout, logger: l}
}

// Resolve returns a Resolved step when the best matching record lists a time
// segment, and otherwise demotes the query to GENERAL. Index failures demote
// as well.
func (r *Resolver) Resolve(ctx context.Context, c state.Classified) (state.Step, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	matches, err := r.index.TopK(ctx, c.Q.WorkingText, TopK)
	if err != nil {
		r.logger.Warn("LOOKUP", "Similarity search failed, demoting", map[string]interface{}{
			"error": err.Error(),
		})
		return c.Demote(state.RouteGeneral), nil
	}
	if len(matches) == 0 {
		r.logger.Info("LOOKUP", "No facility matched, demoting", nil)
		return c.Demote(state.RouteGeneral), nil
	}

	top := matches[0].Record
	segment, ok := TimeSegment(top.FreeText)
	if !ok {
		r.logger.Info("LOOKUP", "Top facility has no time information, demoting", map[string]interface{}{
			"facility": top.Name,
		})
		return c.Demote(state.RouteGeneral), nil
	}

	r.logger.Info("LOOKUP", "Answered from facility record", map[string]interface{}{
		"facility": top.Name,
		"score":    matches[0].Score,
	})
	return c.Resolve(FacilityName(top.FreeText)+" - "+segment, nil), nil
}

// TimeSegment returns the first comma-separated segment of freeText that
// mentions a time keyword, trimmed.
func TimeSegment(freeText string) (string, bool) {
	for _, seg := range strings.Split(freeText, ",") {
		if intent.ContainsAny(strings.ToLower(seg), intent.TimeKeywords) {
			return strings.TrimSpace(seg), true
		}
	}
	return "", false
}

// FacilityName is the part of freeText before the first " in ", or the whole
// text when there is none.
func FacilityName(freeText string) string {
	name, _, _ := strings.Cut(freeText, " in ")
	return strings.TrimSpace(name)
}
