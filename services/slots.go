package services

import (
	"errors"
	"fmt"
	"time"

	"courtside/database"
	"courtside/models"

	"gorm.io/gorm"
)

type SlotInput struct {
	CourtCode  string    `json:"court_code"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	PriceCents int64     `json:"price_cents"`
}

// CreateSlots adds bookable slots to the inventory.
func CreateSlots(inputs []SlotInput) ([]models.Slot, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("at least one slot is required: %w", ErrValidation)
	}

	slots := make([]models.Slot, 0, len(inputs))
	for _, in := range inputs {
		if in.CourtCode == "" {
			return nil, fmt.Errorf("court code is required: %w", ErrValidation)
		}
		if !in.EndTime.After(in.StartTime) {
			return nil, fmt.Errorf("slot on court %s has an invalid time window: %w", in.CourtCode, ErrValidation)
		}
		if in.PriceCents <= 0 {
			return nil, fmt.Errorf("slot on court %s must have a positive price: %w", in.CourtCode, ErrValidation)
		}
		slots = append(slots, models.Slot{
			CourtCode:  in.CourtCode,
			StartTime:  in.StartTime,
			EndTime:    in.EndTime,
			PriceCents: in.PriceCents,
			IsOpen:     true,
		})
	}
	if err := database.DB.Create(&slots).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("slot already exists for that court and start time: %w", ErrConflict)
		}
		return nil, err
	}
	return slots, nil
}

// ListOpenSlots returns future slots with no live claim.
func ListOpenSlots(courtCode string, from, to time.Time) ([]models.Slot, error) {
	q := database.DB.Model(&models.Slot{}).
		Where("is_open = true AND start_time > ?", time.Now()).
		Where("id NOT IN (?)", database.DB.Model(&models.BookingSlot{}).Select("slot_id"))
	if courtCode != "" {
		q = q.Where("court_code = ?", courtCode)
	}
	if !from.IsZero() {
		q = q.Where("start_time >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("start_time < ?", to)
	}

	var slots []models.Slot
	err := q.Order("start_time ASC").Find(&slots).Error
	return slots, err
}
