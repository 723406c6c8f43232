package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MembershipTier brackets are [MinPoints, MaxPoints]; MaxPoints nil means
// open-ended. Active tier ranges must never overlap, enforced on write.
type MembershipTier struct {
	gorm.Model

	Name      string                      `gorm:"uniqueIndex;size:32" json:"name"`
	Rank      int                         `gorm:"index" json:"rank"`
	MinPoints int64                       `json:"min_points"`
	MaxPoints *int64                      `json:"max_points"`
	IsActive  bool                        `gorm:"default:true" json:"is_active"`
	Benefits  datatypes.JSONSlice[string] `json:"benefits"`
}

func (t *MembershipTier) Contains(points int64) bool {
	if points < t.MinPoints {
		return false
	}
	if t.MaxPoints != nil && points > *t.MaxPoints {
		return false
	}
	return true
}
