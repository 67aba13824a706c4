package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepsight-be/internal/pkg/logger"
	"deepsight-be/pkg/rag"
	"deepsight-be/pkg/rag/intent"
	"deepsight-be/pkg/rag/language"
	"deepsight-be/pkg/rag/state"
)

type countingDetector struct {
	calls atomic.Int32
	tag   string
}

func (d *countingDetector) Detect(context.Context, string) (string, error) {
	d.calls.Add(1)
	if d.tag == "" {
		return "en", nil
	}
	return d.tag, nil
}

type countingTranslator struct {
	calls atomic.Int32
}

func (t *countingTranslator) Translate(_ context.Context, text, from, to string) (string, error) {
	t.calls.Add(1)
	if to == "en" {
		return strings.TrimPrefix(text, "["+from+"]"), nil
	}
	return "[" + to + "]" + text, nil
}

type node struct {
	calls atomic.Int32
	fn    func(state.Classified) (state.Step, error)
}

func (n *node) Resolve(_ context.Context, c state.Classified) (state.Step, error) {
	n.calls.Add(1)
	return n.fn(c)
}

func answer(text string) *node {
	return &node{fn: func(c state.Classified) (state.Step, error) {
		return c.Resolve(text, nil), nil
	}}
}

func demote(to state.Route) *node {
	return &node{fn: func(c state.Classified) (state.Step, error) {
		return c.Demote(to), nil
	}}
}

type fixture struct {
	detector   *countingDetector
	translator *countingTranslator
	lookup     *node
	extract    *node
	generate   *node
	graph      *Graph
}

func newFixture(lookup, extract, generate *node) *fixture {
	f := &fixture{
		detector:   &countingDetector{},
		translator: &countingTranslator{},
		lookup:     lookup,
		extract:    extract,
		generate:   generate,
	}
	nop := logger.NewNopLogger()
	f.graph = NewGraph(
		language.NewNormalizer(f.detector, f.translator, "en", nop),
		intent.NewClassifier(),
		language.NewLocalizer(f.translator, "en", nop),
		Nodes{Lookup: lookup, Extract: extract, Generate: generate},
		nop,
	)
	return f
}

func TestRunRejectsEmptyQuery(t *testing.T) {
	f := newFixture(answer("t"), answer("d"), answer("g"))

	for _, text := range []string{"", "   ", "\n\t"} {
		res, err := f.graph.Run(context.Background(), Request{Text: text})
		assert.Nil(t, res)
		assert.ErrorIs(t, err, rag.ErrEmptyQuery)
	}

	assert.Zero(t, f.detector.calls.Load())
	assert.Zero(t, f.translator.calls.Load())
	assert.Zero(t, f.lookup.calls.Load()+f.extract.calls.Load()+f.generate.calls.Load())
}

func TestRunRoutes(t *testing.T) {
	tests := []struct {
		query    string
		route    state.Route
		response string
	}{
		{"Meenakshi temple opening hours", state.RouteTime, "from lookup"},
		{"how far is Madurai from Chennai", state.RouteDistance, "from extract"},
		{"history of Hampi", state.RouteGeneral, "from generate"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			f := newFixture(answer("from lookup"), answer("from extract"), answer("from generate"))
			res, err := f.graph.Run(context.Background(), Request{Text: tt.query})
			require.NoError(t, err)

			assert.Equal(t, tt.route, res.Route)
			assert.Equal(t, tt.response, res.Response)
			assert.Equal(t, "en", res.Q.Language)
			assert.False(t, res.Demoted)
			assert.Zero(t, f.translator.calls.Load())
		})
	}
}

func TestRunDemotionInvokesGeneratorOnce(t *testing.T) {
	f := newFixture(demote(state.RouteGeneral), answer("x"), answer("generated"))

	res, err := f.graph.Run(context.Background(), Request{Text: "Gingee fort timings"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), f.lookup.calls.Load())
	assert.Equal(t, int32(1), f.generate.calls.Load())
	assert.Zero(t, f.extract.calls.Load())
	assert.Equal(t, state.RouteGeneral, res.Route)
	assert.True(t, res.Demoted)
	assert.Equal(t, "generated", res.Response)
}

func TestRunRejectsUndeclaredDemotion(t *testing.T) {
	f := newFixture(answer("x"), demote(state.RouteGeneral), answer("g"))

	_, err := f.graph.Run(context.Background(), Request{Text: "directions to Hampi"})
	assert.ErrorIs(t, err, rag.ErrInvalidTransition)
	assert.Zero(t, f.generate.calls.Load())
}

func TestRunRejectsSelfLoop(t *testing.T) {
	f := newFixture(demote(state.RouteTime), answer("d"), answer("g"))

	_, err := f.graph.Run(context.Background(), Request{Text: "opening time"})
	assert.ErrorIs(t, err, rag.ErrInvalidTransition)
	assert.Equal(t, int32(1), f.lookup.calls.Load())
}

func TestRunPropagatesGenerationFailure(t *testing.T) {
	failing := &node{fn: func(state.Classified) (state.Step, error) {
		return nil, fmt.Errorf("%w: boom", rag.ErrGenerationFailed)
	}}
	f := newFixture(demote(state.RouteGeneral), answer("d"), failing)

	_, err := f.graph.Run(context.Background(), Request{Text: "temple timings"})
	assert.ErrorIs(t, err, rag.ErrGenerationFailed)
}

func TestRunLocalizesOnce(t *testing.T) {
	t.Run("general answer is localized at the end", func(t *testing.T) {
		f := newFixture(answer("t"), answer("d"), answer("Built in 1010."))
		f.detector.tag = "fr"

		res, err := f.graph.Run(context.Background(), Request{Text: "histoire du temple"})
		require.NoError(t, err)
		assert.Equal(t, "fr", res.Q.Language)
		assert.Equal(t, "[fr]Built in 1010.", res.Response)
		assert.True(t, res.Localized)
	})

	t.Run("already localized answers are left alone", func(t *testing.T) {
		pre := &node{fn: func(c state.Classified) (state.Step, error) {
			r := c.Resolve("[fr]Voici la carte", nil)
			r.Localized = true
			return r, nil
		}}
		f := newFixture(answer("t"), pre, answer("g"))
		f.detector.tag = "fr"

		res, err := f.graph.Run(context.Background(), Request{Text: "how far is Hampi"})
		require.NoError(t, err)
		assert.Equal(t, "[fr]Voici la carte", res.Response)
		// one inbound translation, no outbound one
		assert.Equal(t, int32(1), f.translator.calls.Load())
	})
}

func TestRunPassesExplicitEndpoints(t *testing.T) {
	var seen state.Query
	extract := &node{fn: func(c state.Classified) (state.Step, error) {
		seen = c.Q
		return c.Resolve("ok", nil), nil
	}}
	f := newFixture(answer("t"), extract, answer("g"))

	_, err := f.graph.Run(context.Background(), Request{Text: "directions please", Origin: "Trichy", Destination: "Thanjavur"})
	require.NoError(t, err)
	assert.Equal(t, "Trichy", seen.Origin)
	assert.Equal(t, "Thanjavur", seen.Destination)
}

func TestRunConcurrentQueriesAreIsolated(t *testing.T) {
	echo := &node{fn: func(c state.Classified) (state.Step, error) {
		return c.Resolve("answer to "+c.Q.WorkingText, nil), nil
	}}
	f := newFixture(echo, echo, echo)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := fmt.Sprintf("history of site %d", i)
			res, err := f.graph.Run(context.Background(), Request{Text: q})
			if err != nil {
				errs <- err
				return
			}
			if res.Response != "answer to "+q {
				errs <- errors.New("cross-talk: " + res.Response)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
