package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SearchLog is the per-device search history. History is a comma separated
// list of keyword groups, oldest first.
type SearchLog struct {
	Id        uuid.UUID
	DeviceId  string
	History   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const HistorySeparator = ", "

// Append adds entry to the history the same way the database does.
func (s *SearchLog) Append(entry string) {
	if s.History == "" {
		s.History = entry
		return
	}
	s.History = s.History + HistorySeparator + entry
}

// SplitHistory returns the individual entries of a history string.
func SplitHistory(history string) []string {
	if history == "" {
		return nil
	}
	return strings.Split(history, HistorySeparator)
}
