package events

import "time"

const QueryAnsweredType = "QUERY_ANSWERED"

// QueryAnswered is emitted after every successful graph run.
type QueryAnswered struct {
	Route     string
	Language  string
	Demoted   bool
	Images    int
	LatencyMs int64
	At        time.Time
}

func (e QueryAnswered) EventType() string {
	return QueryAnsweredType
}

func (e QueryAnswered) Payload() map[string]interface{} {
	return map[string]interface{}{
		"route":      e.Route,
		"language":   e.Language,
		"demoted":    e.Demoted,
		"images":     e.Images,
		"latency_ms": e.LatencyMs,
		"at":         e.At.UTC().Format(time.RFC3339Nano),
	}
}

func (e QueryAnswered) Timestamp() time.Time {
	return e.At
}

// QueryAnsweredFrom rebuilds the event from a decoded payload. Missing or
// mistyped fields are left zero.
func QueryAnsweredFrom(payload map[string]interface{}) QueryAnswered {
	var e QueryAnswered
	e.Route, _ = payload["route"].(string)
	e.Language, _ = payload["language"].(string)
	e.Demoted, _ = payload["demoted"].(bool)
	// JSON numbers decode as float64
	if n, ok := payload["images"].(float64); ok {
		e.Images = int(n)
	}
	if n, ok := payload["latency_ms"].(float64); ok {
		e.LatencyMs = int64(n)
	}
	if s, ok := payload["at"].(string); ok {
		e.At, _ = time.Parse(time.RFC3339Nano, s)
	}
	return e
}
