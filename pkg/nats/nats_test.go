package nats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"deepsight-be/internal/pkg/logger"
	"deepsight-be/pkg/events"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.QUERY_ANSWERED", Subject(events.QueryAnsweredType))
}

func TestConnectFailsFast(t *testing.T) {
	// an unparsable URL fails before any retry loop starts
	_, err := NewPublisher("nats://[::1", logger.NewNopLogger())
	assert.Error(t, err)

	_, err = NewSubscriber("nats://[::1", logger.NewNopLogger())
	assert.Error(t, err)
}
