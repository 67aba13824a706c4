package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepsight-be/internal/dto"
	"deepsight-be/internal/pkg/logger"
	"deepsight-be/internal/repository/memory"
	"deepsight-be/pkg/events"
	"deepsight-be/pkg/nlp"
	"deepsight-be/pkg/rag"
	"deepsight-be/pkg/rag/executor"
	"deepsight-be/pkg/rag/state"
	"deepsight-be/pkg/speech"
)

type fakeRunner struct {
	mu    sync.Mutex
	calls []executor.Request
	res   *executor.Result
	err   error
}

func (f *fakeRunner) Run(_ context.Context, req executor.Request) (*executor.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if req.Text == "" {
		return nil, rag.ErrEmptyQuery
	}
	return f.res, f.err
}

type fakeBus struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (f *fakeBus) Publish(_ context.Context, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return nil
}

type fakeEvents struct {
	got []events.Event
	err error
}

func (f *fakeEvents) Publish(_ context.Context, e events.Event) error {
	f.got = append(f.got, e)
	return f.err
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(context.Context, []byte, string, string) (*speech.Transcript, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &speech.Transcript{Text: f.text, Language: "ta"}, nil
}

type stubRecognizer struct{}

func (stubRecognizer) Entities(text string) []nlp.Entity {
	if text == "How old is Hampi" {
		return []nlp.Entity{{Text: "Hampi", Label: "GPE"}}
	}
	return nil
}

func (stubRecognizer) NounPhrases(string) []string { return nil }

func resolvedResult() *executor.Result {
	return &executor.Result{
		Resolved: state.Resolved{
			Q:         state.Query{OriginalText: "Hampi எப்போது திறக்கும்", WorkingText: "When does Hampi open", Language: "ta"},
			Route:     state.RouteTime,
			Response:  "Hampi - திறந்திருக்கும் 6 AM",
			Localized: true,
		},
		Duration: 120 * time.Millisecond,
	}
}

func TestAskSuccess(t *testing.T) {
	runner := &fakeRunner{res: resolvedResult()}
	bus := &fakeBus{}
	ev := &fakeEvents{}
	svc := NewQueryService(runner, nil, bus, ev, logger.NewNopLogger())

	res, err := svc.Ask(context.Background(), "dev-1", &dto.QueryRequest{Query: "Hampi எப்போது திறக்கும்", Origin: "a", Destination: "b"})
	require.NoError(t, err)
	assert.Equal(t, "time", res.Category)
	assert.Equal(t, "ta", res.Language)
	assert.Equal(t, int64(120), res.TookMs)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "a", runner.calls[0].Origin)

	require.Len(t, bus.payloads, 1)
	var msg dto.SearchLoggedMessage
	require.NoError(t, json.Unmarshal(bus.payloads[0], &msg))
	assert.Equal(t, dto.SearchLoggedMessage{DeviceId: "dev-1", Query: "When does Hampi open"}, msg)

	require.Len(t, ev.got, 1)
	assert.Equal(t, "time", ev.got[0].Payload()["route"])
}

func TestAskEmptyQuery(t *testing.T) {
	bus := &fakeBus{}
	svc := NewQueryService(&fakeRunner{}, nil, bus, nil, logger.NewNopLogger())

	res, err := svc.Ask(context.Background(), "dev-1", &dto.QueryRequest{})
	assert.ErrorIs(t, err, rag.ErrEmptyQuery)
	require.NotNil(t, res)
	assert.Equal(t, rag.EmptyQueryMessage, res.Response)
	assert.Equal(t, dto.CategoryInvalid, res.Category)
	assert.Empty(t, bus.payloads)
}

func TestAskGenerationFailureIsStillLogged(t *testing.T) {
	bus := &fakeBus{}
	ev := &fakeEvents{}
	runner := &fakeRunner{err: fmt.Errorf("%w: timeout", rag.ErrGenerationFailed)}
	svc := NewQueryService(runner, nil, bus, ev, logger.NewNopLogger())

	res, err := svc.Ask(context.Background(), "dev-1", &dto.QueryRequest{Query: "Tell me about Hampi"})
	assert.ErrorIs(t, err, rag.ErrGenerationFailed)
	assert.Nil(t, res)

	require.Len(t, bus.payloads, 1)
	var msg dto.SearchLoggedMessage
	require.NoError(t, json.Unmarshal(bus.payloads[0], &msg))
	assert.Equal(t, dto.SearchLoggedMessage{DeviceId: "dev-1", Query: "Tell me about Hampi"}, msg)
	assert.Empty(t, ev.got, "only answered queries reach analytics")
}

func TestAskSurvivesAnalyticsFailure(t *testing.T) {
	ev := &fakeEvents{err: errors.New("nats down")}
	svc := NewQueryService(&fakeRunner{res: resolvedResult()}, nil, nil, ev, logger.NewNopLogger())

	_, err := svc.Ask(context.Background(), "", &dto.QueryRequest{Query: "x"})
	assert.NoError(t, err)
}

func TestAskVoice(t *testing.T) {
	runner := &fakeRunner{res: resolvedResult()}
	svc := NewQueryService(runner, &fakeTranscriber{text: "When does Hampi open"}, nil, nil, logger.NewNopLogger())

	res, err := svc.AskVoice(context.Background(), "dev", []byte("RIFF"), "audio/wav", "")
	require.NoError(t, err)
	assert.Equal(t, "When does Hampi open", res.Transcript)
	assert.Equal(t, "time", res.Category)

	silent := NewQueryService(runner, &fakeTranscriber{err: speech.ErrNoSpeech}, nil, nil, logger.NewNopLogger())
	_, err = silent.AskVoice(context.Background(), "dev", nil, "audio/wav", "")
	assert.ErrorIs(t, err, speech.ErrNoSpeech)

	empty := NewQueryService(&fakeRunner{}, &fakeTranscriber{text: ""}, nil, nil, logger.NewNopLogger())
	out, err := empty.AskVoice(context.Background(), "dev", nil, "audio/wav", "")
	assert.ErrorIs(t, err, rag.ErrEmptyQuery)
	require.NotNil(t, out)
	assert.Equal(t, dto.CategoryInvalid, out.Category)

	none := NewQueryService(runner, nil, nil, nil, logger.NewNopLogger())
	_, err = none.AskVoice(context.Background(), "dev", nil, "audio/wav", "")
	assert.Error(t, err)
}

func TestSearchLogService(t *testing.T) {
	ctx := context.Background()
	svc := NewSearchLogService(memory.NewRepositoryFactory(), stubRecognizer{}, logger.NewNopLogger())

	first, err := svc.Record(ctx, "dev", "How old is Hampi")
	require.NoError(t, err)
	assert.Equal(t, "Hampi", first.History)

	second, err := svc.Record(ctx, "dev", "gingee fort timings")
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, []string{"Hampi", "gingee fort timings"}, second.Entries)

	blank, err := svc.Record(ctx, "dev", "  ")
	assert.NoError(t, err)
	assert.Nil(t, blank)

	mine, err := svc.ForDevice(ctx, "dev")
	require.NoError(t, err)
	assert.Equal(t, second.History, mine.History)

	nobody, err := svc.ForDevice(ctx, "other")
	require.NoError(t, err)
	assert.Nil(t, nobody)

	recent, err := svc.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent.Logs, 1)
}

func TestConsumerPersistsPublishedSearches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	factory := memory.NewRepositoryFactory()
	logs := NewSearchLogService(factory, stubRecognizer{}, logger.NewNopLogger())
	consumer := NewConsumerService(pubSub, pubSub, "SEARCH_LOGGED", logs, DefaultRetryPolicy, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("SEARCH_LOGGED", pubSub)
	svc := NewQueryService(&fakeRunner{res: resolvedResult()}, nil, publisher, nil, logger.NewNopLogger())

	_, err := svc.Ask(ctx, "kiosk", &dto.QueryRequest{Query: "q"})
	require.NoError(t, err)
	_, err = svc.Ask(ctx, "kiosk", &dto.QueryRequest{Query: "q"})
	require.NoError(t, err)

	// malformed payloads are acked and dropped
	require.NoError(t, publisher.Publish(ctx, []byte("{")))

	assert.Eventually(t, func() bool {
		l, _ := logs.ForDevice(ctx, "kiosk")
		return l != nil && len(l.Entries) == 2
	}, 2*time.Second, 10*time.Millisecond)

	n, _ := factory.NewUnitOfWork(ctx).SearchLogRepository().Count(ctx)
	assert.Equal(t, int64(1), n)
}

// failingSearchLogs refuses to store anything for one device.
type failingSearchLogs struct {
	ISearchLogService
	badDevice string

	mu       sync.Mutex
	attempts map[string]int
}

func (f *failingSearchLogs) Record(_ context.Context, deviceId, _ string) (*dto.SearchLogResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[deviceId]++
	if deviceId == f.badDevice {
		return nil, errors.New("value too long for type character varying(128)")
	}
	return &dto.SearchLogResponse{DeviceId: deviceId}, nil
}

func (f *failingSearchLogs) count(deviceId string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts[deviceId]
}

func TestConsumerPoisonsUnstorableSearches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	poisoned, err := pubSub.Subscribe(ctx, PoisonTopic("SEARCH_LOGGED"))
	require.NoError(t, err)

	logs := &failingSearchLogs{badDevice: "bad", attempts: map[string]int{}}
	policy := RetryPolicy{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}
	require.NoError(t, NewConsumerService(pubSub, pubSub, "SEARCH_LOGGED", logs, policy, logger.NewNopLogger()).Consume(ctx))

	publisher := NewPublisherService("SEARCH_LOGGED", pubSub)
	bad, _ := json.Marshal(dto.SearchLoggedMessage{DeviceId: "bad", Query: "Hampi"})
	good, _ := json.Marshal(dto.SearchLoggedMessage{DeviceId: "good", Query: "Hampi"})
	require.NoError(t, publisher.Publish(ctx, bad))
	require.NoError(t, publisher.Publish(ctx, good))

	select {
	case msg := <-poisoned:
		msg.Ack()
		assert.JSONEq(t, string(bad), string(msg.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("search log never reached the poison topic")
	}

	assert.Eventually(t, func() bool { return logs.count("good") == 1 }, time.Second, 5*time.Millisecond)

	// the first attempt plus MaxRetries, and no redelivery afterwards
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 3, logs.count("bad"))
	assert.Equal(t, 1, logs.count("good"))
}

func TestAnalyticsObserve(t *testing.T) {
	svc := NewAnalyticsService(nil, logger.NewNopLogger())
	require.NoError(t, svc.Start(context.Background()))

	ctx := context.Background()
	_ = svc.Observe(ctx, events.QueryAnswered{Route: "time", Language: "ta", Demoted: true, LatencyMs: 100})
	_ = svc.Observe(ctx, events.QueryAnswered{Route: "time", Language: "en", LatencyMs: 300})
	_ = svc.Observe(ctx, events.QueryAnswered{Route: "general", Language: "en", Images: 3, LatencyMs: 900})
	_ = svc.Observe(ctx, events.Raw{Type: "OTHER", Data: map[string]interface{}{}})

	stats := svc.Stats()
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.WithImages)
	assert.Equal(t, int64(2), stats.Routes["time"].Count)
	assert.Equal(t, int64(1), stats.Routes["time"].Demoted)
	assert.InDelta(t, 200.0, stats.Routes["time"].AvgLatencyMs, 1e-9)
	assert.Equal(t, int64(2), stats.Languages["en"])
}
