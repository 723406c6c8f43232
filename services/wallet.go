package services

import (
	"errors"
	"fmt"

	"courtside/database"
	"courtside/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockedWallet loads a wallet FOR UPDATE. Every balance mutation goes
// through a wallet locked here, inside the caller's transaction.
func lockedWallet(tx *gorm.DB, memberCode string) (*models.Wallet, error) {
	var w models.Wallet
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_code = ?", memberCode).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("wallet for member %s: %w", memberCode, ErrNotFound)
		}
		return nil, err
	}
	if w.Status != models.WalletActive {
		return nil, fmt.Errorf("wallet for member %s is %s: %w", memberCode, w.Status, ErrConflict)
	}
	return &w, nil
}

func debitWallet(tx *gorm.DB, w *models.Wallet, amount int64, refType, refID, note string) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("debit amount %d must be positive: %w", amount, ErrValidation)
	}
	if w.Balance < amount {
		return nil, fmt.Errorf("balance %d short of %d for member %s: %w", w.Balance, amount, w.MemberCode, ErrInsufficientBalance)
	}

	before := w.Balance
	w.Balance -= amount
	w.TotalSpent += amount
	if err := tx.Model(w).Updates(map[string]any{
		"balance":     w.Balance,
		"total_spent": w.TotalSpent,
	}).Error; err != nil {
		return nil, err
	}

	trx := models.WalletTransaction{
		WalletID:      w.ID,
		MemberCode:    w.MemberCode,
		TrxType:       models.TrxDebit,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  w.Balance,
		RefType:       refType,
		RefID:         refID,
		Note:          note,
	}
	if err := tx.Create(&trx).Error; err != nil {
		return nil, err
	}
	return &trx, nil
}

func creditWallet(tx *gorm.DB, w *models.Wallet, amount int64, trxType models.WalletTrxType, refType, refID, note string) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("credit amount %d must be positive: %w", amount, ErrValidation)
	}

	before := w.Balance
	w.Balance += amount
	updates := map[string]any{"balance": w.Balance}
	if trxType == models.TrxDeposit {
		w.TotalDeposited += amount
		updates["total_deposited"] = w.TotalDeposited
	}
	if err := tx.Model(w).Updates(updates).Error; err != nil {
		return nil, err
	}

	trx := models.WalletTransaction{
		WalletID:      w.ID,
		MemberCode:    w.MemberCode,
		TrxType:       trxType,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  w.Balance,
		RefType:       refType,
		RefID:         refID,
		Note:          note,
	}
	if err := tx.Create(&trx).Error; err != nil {
		return nil, err
	}
	return &trx, nil
}

// TopUpWallet deposits into a member wallet. Amount must fall inside the
// configured bounds.
func TopUpWallet(memberCode string, amountCents int64, source string) (*models.Wallet, *models.WalletTransaction, error) {
	min, max := topUpBounds()
	if amountCents < min || amountCents > max {
		return nil, nil, fmt.Errorf("top-up amount %d outside allowed range [%d, %d]: %w", amountCents, min, max, ErrValidation)
	}

	note := "Top-up"
	if source != "" {
		note = "Top-up via " + source
	}

	var (
		w   *models.Wallet
		trx *models.WalletTransaction
	)
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		w, err = lockedWallet(tx, memberCode)
		if err != nil {
			return err
		}
		trx, err = creditWallet(tx, w, amountCents, models.TrxDeposit, "TOPUP", uuid.New().String(), note)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return w, trx, nil
}

func GetWallet(memberCode string) (*models.Wallet, error) {
	var w models.Wallet
	if err := database.DB.Where("member_code = ?", memberCode).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("wallet for member %s: %w", memberCode, ErrNotFound)
		}
		return nil, err
	}
	return &w, nil
}

func WalletStatement(memberCode string, limit, offset int) ([]models.WalletTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []models.WalletTransaction
	err := database.DB.Where("member_code = ?", memberCode).
		Order("id DESC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, err
}

// LedgerBalance derives the balance from the transaction log. It must equal
// Wallet.Balance at all times; divergence is a correctness bug.
func LedgerBalance(memberCode string) (int64, error) {
	var sum int64
	err := database.DB.Model(&models.WalletTransaction{}).
		Where("member_code = ?", memberCode).
		Select("COALESCE(SUM(CASE WHEN trx_type = ? THEN -amount ELSE amount END), 0)", models.TrxDebit).
		Scan(&sum).Error
	return sum, err
}
