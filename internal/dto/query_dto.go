package dto

// QueryRequest is the body of POST /api/query and of every websocket frame.
type QueryRequest struct {
	Query       string `json:"query"`
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
}

type QueryResponse struct {
	Response string   `json:"response"`
	Category string   `json:"category"`
	Language string   `json:"language,omitempty"`
	Images   []string `json:"images,omitempty"`
	Demoted  bool     `json:"demoted,omitempty"`
	TookMs   int64    `json:"took_ms,omitempty"`
}

// VoiceQueryResponse echoes what the transcriber heard.
type VoiceQueryResponse struct {
	QueryResponse
	Transcript         string `json:"transcript"`
	TranscriptLanguage string `json:"transcript_language,omitempty"`
}

// CategoryInvalid marks responses to input that was never routed.
const CategoryInvalid = "invalid"

// SearchLoggedMessage travels over the in-process bus from the query service
// to the search-log consumer.
type SearchLoggedMessage struct {
	DeviceId string `json:"device_id"`
	Query    string `json:"query"`
}
