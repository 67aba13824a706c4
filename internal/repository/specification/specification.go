package specification

import "gorm.io/gorm"

// Specification narrows a gorm query. The memory repositories interpret the
// same values by type.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
