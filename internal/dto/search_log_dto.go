package dto

import (
	"time"

	"github.com/google/uuid"
)

type SearchLogResponse struct {
	Id        uuid.UUID `json:"id"`
	DeviceId  string    `json:"device_id"`
	History   string    `json:"history"`
	Entries   []string  `json:"entries"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RecentSearchesResponse struct {
	Logs []*SearchLogResponse `json:"logs"`
}
