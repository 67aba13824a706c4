package specification

import "gorm.io/gorm"

type ByDeviceID struct {
	DeviceID string
}

func (s ByDeviceID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("device_id = ?", s.DeviceID)
}

// RecentlyUpdated orders logs newest activity first.
type RecentlyUpdated struct{}

func (s RecentlyUpdated) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("updated_at DESC")
}
