package dto

type HealthResponse struct {
	Status     string `json:"status"`
	Corpus     int    `json:"corpus"`
	Places     int    `json:"places"`
	Backend    string `json:"backend"`
	WorkingLng string `json:"working_language"`
}

type RouteStats struct {
	Count        int64   `json:"count"`
	Demoted      int64   `json:"demoted"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

type StatsResponse struct {
	Total      int64                  `json:"total"`
	Routes     map[string]*RouteStats `json:"routes"`
	Languages  map[string]int64       `json:"languages"`
	WithImages int64                  `json:"with_images"`
}

type LogEntryResponse struct {
	Id        string                 `json:"id"`
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Module    string                 `json:"module,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}
