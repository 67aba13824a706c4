package specification

import "gorm.io/gorm"

// InCorpusOrder orders facilities the way the scraper emitted them.
type InCorpusOrder struct{}

func (s InCorpusOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// ByFacilityName matches names case-insensitively by substring.
type ByFacilityName struct {
	Name string
}

func (s ByFacilityName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name ILIKE ?", "%"+s.Name+"%")
}

// HasEmbedding skips facilities that were stored without a vector.
type HasEmbedding struct{}

func (s HasEmbedding) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("embedding IS NOT NULL")
}
