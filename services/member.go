package services

import (
	"errors"
	"fmt"
	"log"

	"courtside/database"
	"courtside/models"

	"gorm.io/gorm"
)

// RegisterMember creates a member with an empty active wallet and assigns
// the base tier for a zero point balance.
func RegisterMember(memberCode, displayName string, isCoach bool) (*models.Member, error) {
	if memberCode == "" {
		return nil, fmt.Errorf("member code is required: %w", ErrValidation)
	}

	m := models.Member{
		MemberCode:  memberCode,
		DisplayName: displayName,
		IsCoach:     isCoach,
		IsActive:    true,
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("member code %s already registered: %w", memberCode, ErrConflict)
			}
			return err
		}
		w := models.Wallet{
			MemberID:   m.ID,
			MemberCode: m.MemberCode,
			Status:     models.WalletActive,
		}
		if err := tx.Create(&w).Error; err != nil {
			return err
		}
		_, err := recalcTierTx(tx, &m, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func GetMember(memberCode string) (*models.Member, error) {
	var m models.Member
	if err := database.DB.Preload("Tier").
		Where("member_code = ? AND is_active = true", memberCode).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("member %s: %w", memberCode, ErrNotFound)
		}
		return nil, err
	}
	return &m, nil
}

// EnsurePlatformAccount creates the platform revenue account on first boot.
func EnsurePlatformAccount() error {
	code := PlatformCode()
	var count int64
	if err := database.DB.Model(&models.Member{}).
		Where("member_code = ?", code).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if _, err := RegisterMember(code, "Platform", false); err != nil {
		return err
	}
	log.Printf("✅ Created platform account %s", code)
	return nil
}

// EnsureDefaultTiers seeds the tier table when empty.
func EnsureDefaultTiers() error {
	var count int64
	if err := database.DB.Model(&models.MembershipTier{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	silverMax := int64(299)
	bronzeMax := int64(99)
	defaults := []models.MembershipTier{
		{Name: "Bronze", Rank: 1, MinPoints: 0, MaxPoints: &bronzeMax, IsActive: true},
		{Name: "Silver", Rank: 2, MinPoints: 100, MaxPoints: &silverMax, IsActive: true},
		{Name: "Gold", Rank: 3, MinPoints: 300, MaxPoints: nil, IsActive: true},
	}
	if err := database.DB.Create(&defaults).Error; err != nil {
		return err
	}
	log.Println("✅ Seeded default membership tiers")
	return nil
}
