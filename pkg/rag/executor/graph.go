// Package executor runs a query through the routing graph:
// normalize, classify, resolve (with at most one demotion), localize.
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"deepsight-be/internal/pkg/logger"
	"deepsight-be/pkg/rag"
	"deepsight-be/pkg/rag/intent"
	"deepsight-be/pkg/rag/language"
	"deepsight-be/pkg/rag/state"
)

// Resolver handles one route. It returns either a Resolved step or a
// Classified step demoting the query to another route.
type Resolver interface {
	Resolve(ctx context.Context, c state.Classified) (state.Step, error)
}

// Nodes are the terminal resolvers, one per route.
type Nodes struct {
	Lookup   Resolver
	Extract  Resolver
	Generate Resolver
}

// Demotions lists the only route changes a resolver may request.
var Demotions = map[state.Route][]state.Route{
	state.RouteTime: {state.RouteGeneral},
}

// Request is a single question.
type Request struct {
	Text        string
	Origin      string
	Destination string
}

// Result is the terminal state plus how long the run took.
type Result struct {
	state.Resolved
	Duration time.Duration
}

type Graph struct {
	normalizer *language.Normalizer
	classifier *intent.Classifier
	localizer  *language.Localizer
	nodes      map[state.Route]Resolver
	logger     logger.ILogger
}

func NewGraph(
	normalizer *language.Normalizer,
	classifier *intent.Classifier,
	localizer *language.Localizer,
	nodes Nodes,
	l logger.ILogger,
) *Graph {
	return &Graph{
		normalizer: normalizer,
		classifier: classifier,
		localizer:  localizer,
		nodes: map[state.Route]Resolver{
			state.RouteTime:     nodes.Lookup,
			state.RouteDistance: nodes.Extract,
			state.RouteGeneral:  nodes.Generate,
		},
		logger: l,
	}
}

// Run answers one question. Blank input is rejected with rag.ErrEmptyQuery
// before any collaborator is called.
func (g *Graph) Run(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, rag.ErrEmptyQuery
	}

	start := time.Now()
	ctx, span := otel.Tracer("rag.graph").Start(ctx, "Graph.Run")
	defer span.End()

	working, lang := g.normalizer.Normalize(ctx, req.Text)
	route, wantsImages := g.classifier.Classify(working)

	q := state.Query{
		OriginalText: req.Text,
		WorkingText:  working,
		Language:     lang,
		WantsImages:  wantsImages,
		Origin:       req.Origin,
		Destination:  req.Destination,
	}
	span.SetAttributes(
		attribute.String("query.language", lang),
		attribute.String("query.route", string(route)),
		attribute.Bool("query.wants_images", wantsImages),
	)
	g.logger.Info("GRAPH", "Query classified", map[string]interface{}{
		"route":        string(route),
		"language":     lang,
		"wants_images": wantsImages,
	})

	resolved, err := g.walk(ctx, state.Pending{Q: q}.Classify(route))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !resolved.Localized {
		resolved.Response = g.localizer.Localize(ctx, resolved.Response, lang)
		resolved.Localized = true
	}

	return &Result{Resolved: resolved, Duration: time.Since(start)}, nil
}

func (g *Graph) walk(ctx context.Context, c state.Classified) (state.Resolved, error) {
	visited := make(map[state.Route]bool)

	for {
		if visited[c.Route] {
			return state.Resolved{}, fmt.Errorf("%w: %s", rag.ErrGraphCycle, c.Route)
		}
		visited[c.Route] = true

		node, ok := g.nodes[c.Route]
		if !ok || node == nil {
			return state.Resolved{}, fmt.Errorf("%w: no resolver for %s", rag.ErrInvalidTransition, c.Route)
		}

		step, err := g.runNode(ctx, node, c)
		if err != nil {
			return state.Resolved{}, err
		}

		switch s := step.(type) {
		case state.Resolved:
			return s, nil
		case state.Classified:
			if !allowed(c.Route, s.Route) {
				return state.Resolved{}, fmt.Errorf("%w: %s to %s", rag.ErrInvalidTransition, c.Route, s.Route)
			}
			g.logger.Info("GRAPH", "Query demoted", map[string]interface{}{
				"from": string(c.Route),
				"to":   string(s.Route),
			})
			c = s
		default:
			return state.Resolved{}, fmt.Errorf("%w: unexpected step %T from %s", rag.ErrInvalidTransition, step, c.Route)
		}
	}
}

func (g *Graph) runNode(ctx context.Context, node Resolver, c state.Classified) (state.Step, error) {
	ctx, span := otel.Tracer("rag.graph").Start(ctx, "node."+c.Route.Category(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("node.demoted_from", string(c.DemotedFrom))),
	)
	defer span.End()

	step, err := node.Resolve(ctx, c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return step, err
}

func allowed(from, to state.Route) bool {
	for _, r := range Demotions[from] {
		if r == to {
			return true
		}
	}
	return false
}
