package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Facility struct {
	Id         uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string           `gorm:"type:varchar(255);not null;index"`
	Location   string           `gorm:"type:varchar(255)"`
	FreeText   string           `gorm:"type:text;not null"`
	Attributes datatypes.JSON   `gorm:"type:jsonb"`
	Embedding  *pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text and text-embedding-004 are both 768-d
	Position   int              `gorm:"not null;default:0;index"`
	CreatedAt  time.Time        `gorm:"autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"autoUpdateTime"`
}

func (Facility) TableName() string {
	return "facilities"
}
