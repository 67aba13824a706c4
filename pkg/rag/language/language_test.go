package language

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"deepsight-be/internal/pkg/logger"
)

type fakeDetector struct {
	tags  map[string]string
	err   error
	calls int
}

func (f *fakeDetector) Detect(_ context.Context, text string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if tag, ok := f.tags[text]; ok {
		return tag, nil
	}
	return "en", nil
}

// fakeTranslator tags text as "[to]text" and strips the tag on the way back.
type fakeTranslator struct {
	err   error
	calls int
	seen  []string
}

func (f *fakeTranslator) Translate(_ context.Context, text, from, to string) (string, error) {
	f.calls++
	f.seen = append(f.seen, text)
	if f.err != nil {
		return "", f.err
	}
	prefix := "[" + from + "]"
	if strings.HasPrefix(text, prefix) {
		return strings.TrimPrefix(text, prefix), nil
	}
	return "[" + to + "]" + text, nil
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "en", Canonical("en-US"))
	assert.Equal(t, "ta", Canonical("TA"))
	assert.Equal(t, "hi", Canonical(" hi-IN "))
	assert.Equal(t, "", Canonical(""))
	assert.Equal(t, "unknown", Canonical("unknown"))
	assert.True(t, Same("en-GB", "en"))
}

func TestNormalize(t *testing.T) {
	ctx := context.Background()
	nop := logger.NewNopLogger()

	t.Run("working language is identity", func(t *testing.T) {
		tr := &fakeTranslator{}
		n := NewNormalizer(&fakeDetector{}, tr, "en", nop)

		text, lang := n.Normalize(ctx, "Opening hours of Hampi")
		assert.Equal(t, "Opening hours of Hampi", text)
		assert.Equal(t, "en", lang)
		assert.Zero(t, tr.calls)
	})

	t.Run("foreign text is translated", func(t *testing.T) {
		tr := &fakeTranslator{}
		det := &fakeDetector{tags: map[string]string{"hampi kab khulta hai": "hi-IN"}}
		n := NewNormalizer(det, tr, "en", nop)

		text, lang := n.Normalize(ctx, "hampi kab khulta hai")
		assert.Equal(t, "[en]hampi kab khulta hai", text)
		assert.Equal(t, "hi", lang)
	})

	t.Run("detection failure assumes english", func(t *testing.T) {
		tr := &fakeTranslator{}
		n := NewNormalizer(&fakeDetector{err: errors.New("down")}, tr, "en", nop)

		text, lang := n.Normalize(ctx, "bonjour")
		assert.Equal(t, "bonjour", text)
		assert.Equal(t, "en", lang)
		assert.Zero(t, tr.calls)
	})

	t.Run("translation failure keeps original", func(t *testing.T) {
		tr := &fakeTranslator{err: errors.New("timeout")}
		det := &fakeDetector{tags: map[string]string{"bonjour": "fr"}}
		n := NewNormalizer(det, tr, "en", nop)

		text, lang := n.Normalize(ctx, "bonjour")
		assert.Equal(t, "bonjour", text)
		assert.Equal(t, "en", lang)
	})
}

func TestNormalizeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	det := &fakeDetector{tags: map[string]string{"wo ist der tempel": "de"}}
	n := NewNormalizer(det, &fakeTranslator{}, "en", logger.NewNopLogger())

	once, _ := n.Normalize(ctx, "wo ist der tempel")
	twice, lang := n.Normalize(ctx, once)
	assert.Equal(t, once, twice)
	assert.Equal(t, "en", lang)
}

func TestLocalize(t *testing.T) {
	ctx := context.Background()
	nop := logger.NewNopLogger()

	t.Run("identity for working and unknown targets", func(t *testing.T) {
		tr := &fakeTranslator{}
		l := NewLocalizer(tr, "en", nop)
		assert.Equal(t, "hello", l.Localize(ctx, "hello", "en"))
		assert.Equal(t, "hello", l.Localize(ctx, "hello", "unknown"))
		assert.Equal(t, "hello", l.Localize(ctx, "hello", ""))
		assert.Zero(t, tr.calls)
	})

	t.Run("links are not translated", func(t *testing.T) {
		tr := &fakeTranslator{}
		l := NewLocalizer(tr, "en", nop)
		in := "Here is Hampi on the map:\nhttps://www.google.com/maps/place/Hampi"

		out := l.Localize(ctx, in, "ta")
		assert.Equal(t, "[ta]Here is Hampi on the map:\nhttps://www.google.com/maps/place/Hampi", out)
		assert.Equal(t, []string{"Here is Hampi on the map:"}, tr.seen)
	})

	t.Run("image block is kept verbatim", func(t *testing.T) {
		l := NewLocalizer(&fakeTranslator{}, "en", nop)
		in := "Built in 1010.\n\n![Image](https://img/1.jpg)\n![Image](https://img/2.jpg)"

		out := l.Localize(ctx, in, "fr")
		assert.Equal(t, "[fr]Built in 1010.\n![Image](https://img/1.jpg)\n![Image](https://img/2.jpg)", out)
	})

	t.Run("failure returns working text", func(t *testing.T) {
		l := NewLocalizer(&fakeTranslator{err: errors.New("503")}, "en", nop)
		assert.Equal(t, "Built in 1010.", l.Localize(ctx, "Built in 1010.", "fr"))
	})
}

func TestLocalizeRoundTrip(t *testing.T) {
	ctx := context.Background()
	nop := logger.NewNopLogger()
	tr := &fakeTranslator{}
	det := &fakeDetector{tags: map[string]string{"quand ouvre le temple": "fr"}}

	n := NewNormalizer(det, tr, "en", nop)
	l := NewLocalizer(tr, "en", nop)

	working, lang := n.Normalize(ctx, "quand ouvre le temple")
	answer := l.Localize(ctx, "The temple opens at 6 AM.", lang)

	assert.Equal(t, "fr", lang)
	assert.Equal(t, "[en]quand ouvre le temple", working)
	assert.Equal(t, "[fr]The temple opens at 6 AM.", answer)
}

func TestSplitLinks(t *testing.T) {
	head, tail := SplitLinks("no links here")
	assert.Equal(t, "no links here", head)
	assert.Empty(t, tail)

	head, tail = SplitLinks("https://only.link")
	assert.Empty(t, head)
	assert.Equal(t, "https://only.link", tail)
}
