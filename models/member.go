package models

import (
	"gorm.io/gorm"
)

type Member struct {
	gorm.Model

	MemberCode         string `gorm:"uniqueIndex;size:32" json:"member_code"`
	DisplayName        string `gorm:"size:64" json:"display_name"`
	TierPointBalance   int64  `json:"tier_point_balance"`
	RewardPointBalance int64  `json:"reward_point_balance"`
	TierID             *uint  `gorm:"index" json:"tier_id"`
	IsCoach            bool   `gorm:"default:false" json:"is_coach"`
	IsActive           bool   `gorm:"default:true" json:"is_active"`

	Tier   *MembershipTier `gorm:"foreignKey:TierID" json:"tier,omitempty"`
	Wallet Wallet          `gorm:"foreignKey:MemberID" json:"-"`
}
