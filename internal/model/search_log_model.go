package model

import (
	"time"

	"github.com/google/uuid"
)

type SearchLog struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DeviceId  string    `gorm:"type:varchar(128);not null;uniqueIndex"`
	History   string    `gorm:"type:text;not null;default:''"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index"`
}

func (SearchLog) TableName() string {
	return "search_logs"
}
