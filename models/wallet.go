package models

import (
	"gorm.io/gorm"
)

type WalletStatus string

const (
	WalletActive WalletStatus = "ACTIVE"
	WalletFrozen WalletStatus = "FROZEN"
)

type WalletTrxType string

const (
	TrxDeposit       WalletTrxType = "DEPOSIT"
	TrxDebit         WalletTrxType = "DEBIT"
	TrxRefund        WalletTrxType = "REFUND"
	TrxEscrowRelease WalletTrxType = "ESCROW_RELEASE"
	TrxRevenueShare  WalletTrxType = "REVENUE_SHARE"
)

// All wallet amounts are integer cents.
type Wallet struct {
	gorm.Model

	MemberID       uint         `gorm:"uniqueIndex" json:"member_id"`
	MemberCode     string       `gorm:"index;size:32" json:"member_code"`
	Balance        int64        `json:"balance"`
	FrozenBalance  int64        `json:"frozen_balance"`
	TotalDeposited int64        `json:"total_deposited"`
	TotalSpent     int64        `json:"total_spent"`
	Status         WalletStatus `gorm:"size:16;default:ACTIVE" json:"status"`

	Transactions []WalletTransaction `gorm:"foreignKey:WalletID"`
}

// WalletTransaction rows are append-only; never updated after creation.
type WalletTransaction struct {
	gorm.Model

	WalletID      uint          `gorm:"index"`
	MemberCode    string        `gorm:"index;size:32" json:"member_code"`
	TrxType       WalletTrxType `gorm:"size:16;index" json:"trx_type"`
	Amount        int64         `json:"amount"`
	BalanceBefore int64         `json:"balance_before"`
	BalanceAfter  int64         `json:"balance_after"`
	RefType       string        `gorm:"size:16;index:idx_wallet_trx_ref" json:"ref_type"`
	RefID         string        `gorm:"size:64;index:idx_wallet_trx_ref" json:"ref_id"`
	Note          string        `gorm:"size:255" json:"note"`
}

// Signed contribution of a transaction to the wallet balance.
func (t *WalletTransaction) Delta() int64 {
	if t.TrxType == TrxDebit {
		return -t.Amount
	}
	return t.Amount
}
