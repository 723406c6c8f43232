package services

import (
	"errors"
	"fmt"
	"log"

	"courtside/database"
	"courtside/events"
	"courtside/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TierChangeResult struct {
	MemberCode string `json:"member_code"`
	OldTier    string `json:"old_tier"`
	NewTier    string `json:"new_tier"`
	Changed    bool   `json:"changed"`
}

func lockedMember(tx *gorm.DB, memberCode string) (*models.Member, error) {
	var m models.Member
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_code = ? AND is_active = true", memberCode).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("member %s: %w", memberCode, ErrNotFound)
		}
		return nil, err
	}
	return &m, nil
}

func tierName(tx *gorm.DB, tierID *uint) string {
	if tierID == nil {
		return ""
	}
	var t models.MembershipTier
	if err := tx.First(&t, *tierID).Error; err != nil {
		return ""
	}
	return t.Name
}

// recalcTierTx reassigns the member to the active tier whose range contains
// their tier point balance. With upgradeOnly set, members are never moved
// to a lower-ranked tier (the batch sweep behavior).
func recalcTierTx(tx *gorm.DB, m *models.Member, upgradeOnly bool) (*TierChangeResult, error) {
	result := &TierChangeResult{MemberCode: m.MemberCode, OldTier: tierName(tx, m.TierID)}
	result.NewTier = result.OldTier

	var tiers []models.MembershipTier
	if err := tx.Where("is_active = true").Order("rank ASC").Find(&tiers).Error; err != nil {
		return nil, err
	}

	var target *models.MembershipTier
	for i := range tiers {
		if tiers[i].Contains(m.TierPointBalance) {
			target = &tiers[i]
			break
		}
	}
	if target == nil {
		return result, nil
	}
	if m.TierID != nil && *m.TierID == target.ID {
		return result, nil
	}
	if upgradeOnly && m.TierID != nil {
		var current models.MembershipTier
		err := tx.First(&current, *m.TierID).Error
		switch {
		case err == nil:
			if target.Rank <= current.Rank {
				return result, nil
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Current tier row is gone; reassigning is the right move.
		default:
			return nil, err
		}
	}

	if err := tx.Model(m).Update("tier_id", target.ID).Error; err != nil {
		return nil, err
	}
	m.TierID = &target.ID
	result.NewTier = target.Name
	result.Changed = result.NewTier != result.OldTier
	return result, nil
}

func addPointsTx(tx *gorm.DB, memberCode string, tierPoints, rewardPoints int64) (*TierChangeResult, error) {
	m, err := lockedMember(tx, memberCode)
	if err != nil {
		return nil, err
	}
	if m.TierPointBalance+tierPoints < 0 || m.RewardPointBalance+rewardPoints < 0 {
		return nil, fmt.Errorf("point balance for member %s cannot go negative: %w", memberCode, ErrValidation)
	}

	m.TierPointBalance += tierPoints
	m.RewardPointBalance += rewardPoints
	if err := tx.Model(m).Updates(map[string]any{
		"tier_point_balance":   m.TierPointBalance,
		"reward_point_balance": m.RewardPointBalance,
	}).Error; err != nil {
		return nil, err
	}
	return recalcTierTx(tx, m, false)
}

// AddPoints grants tier and/or reward points and recalculates the tier.
// Negative values revoke points but may not drive a balance below zero.
func AddPoints(memberCode string, tierPoints, rewardPoints int64) (*TierChangeResult, error) {
	if tierPoints == 0 && rewardPoints == 0 {
		return nil, fmt.Errorf("no points to grant: %w", ErrValidation)
	}
	var result *TierChangeResult
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = addPointsTx(tx, memberCode, tierPoints, rewardPoints)
		return err
	})
	if err != nil {
		return nil, err
	}
	if result.Changed {
		emit(events.RKTierChanged, events.TierChanged{
			MemberCode: memberCode, OldTier: result.OldTier, NewTier: result.NewTier,
		})
	}
	return result, nil
}

// RecalculateMemberTier re-derives the tier from the current point balance,
// moving the member up or down as needed.
func RecalculateMemberTier(memberCode string) (*TierChangeResult, error) {
	var result *TierChangeResult
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		m, err := lockedMember(tx, memberCode)
		if err != nil {
			return err
		}
		result, err = recalcTierTx(tx, m, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	if result.Changed {
		emit(events.RKTierChanged, events.TierChanged{
			MemberCode: memberCode, OldTier: result.OldTier, NewTier: result.NewTier,
		})
	}
	return result, nil
}

// RunTierUpgradeSweep re-scans all active members and upgrades those whose
// balance now qualifies for a higher tier. Running it on already-correct
// members is a no-op. Each member is processed in its own transaction so
// the sweep tolerates interleaving with live bookings.
func RunTierUpgradeSweep() (int, error) {
	var codes []string
	if err := database.DB.Model(&models.Member{}).
		Where("is_active = true").Pluck("member_code", &codes).Error; err != nil {
		return 0, err
	}

	upgraded := 0
	for _, code := range codes {
		var result *TierChangeResult
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			m, err := lockedMember(tx, code)
			if err != nil {
				return err
			}
			result, err = recalcTierTx(tx, m, true)
			return err
		})
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			log.Printf("❌ tier sweep failed for member %s: %v", code, err)
			continue
		}
		if result.Changed {
			upgraded++
			emit(events.RKTierChanged, events.TierChanged{
				MemberCode: code, OldTier: result.OldTier, NewTier: result.NewTier,
			})
		}
	}
	return upgraded, nil
}

// CreateTier adds a membership tier. Active tier ranges must not overlap.
func CreateTier(name string, rank int, minPoints int64, maxPoints *int64, benefits []string) (*models.MembershipTier, error) {
	if name == "" {
		return nil, fmt.Errorf("tier name is required: %w", ErrValidation)
	}
	if minPoints < 0 || (maxPoints != nil && *maxPoints < minPoints) {
		return nil, fmt.Errorf("invalid point range [%d, %v]: %w", minPoints, maxPoints, ErrValidation)
	}

	tier := models.MembershipTier{
		Name:      name,
		Rank:      rank,
		MinPoints: minPoints,
		MaxPoints: maxPoints,
		IsActive:  true,
		Benefits:  benefits,
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var existing []models.MembershipTier
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("is_active = true").Find(&existing).Error; err != nil {
			return err
		}
		for _, e := range existing {
			if rangesOverlap(minPoints, maxPoints, e.MinPoints, e.MaxPoints) {
				return fmt.Errorf("tier range overlaps active tier %s: %w", e.Name, ErrValidation)
			}
		}
		return tx.Create(&tier).Error
	})
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

func rangesOverlap(aMin int64, aMax *int64, bMin int64, bMax *int64) bool {
	if aMax != nil && *aMax < bMin {
		return false
	}
	if bMax != nil && *bMax < aMin {
		return false
	}
	return true
}

func ListTiers() ([]models.MembershipTier, error) {
	var tiers []models.MembershipTier
	err := database.DB.Where("is_active = true").Order("rank ASC").Find(&tiers).Error
	return tiers, err
}
