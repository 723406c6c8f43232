package services

import (
	"fmt"
	"log"

	"courtside/database"
	"courtside/models"
)

type ReconciliationReport struct {
	WalletsChecked       int      `json:"wallets_checked"`
	WalletMismatches     []string `json:"wallet_mismatches"`
	EscrowPoolBalance    int64    `json:"escrow_pool_balance"`
	PlatformRevenue      int64    `json:"platform_revenue"`
	EscrowMismatches     []string `json:"escrow_mismatches"`
	SettlementMismatches []string `json:"settlement_mismatches"`
	Clean                bool     `json:"clean"`
}

// Reconcile cross-checks the stored balances against the ledgers: every
// wallet balance must equal its transaction sum, and every resolved escrow
// entry must conserve its held amount across refund and shares.
func Reconcile() (*ReconciliationReport, error) {
	report := &ReconciliationReport{}

	var wallets []models.Wallet
	if err := database.DB.Find(&wallets).Error; err != nil {
		return nil, err
	}
	for _, w := range wallets {
		report.WalletsChecked++
		derived, err := LedgerBalance(w.MemberCode)
		if err != nil {
			return nil, err
		}
		if derived != w.Balance {
			log.Printf("🚨 wallet %s balance %d diverges from ledger sum %d", w.MemberCode, w.Balance, derived)
			report.WalletMismatches = append(report.WalletMismatches, w.MemberCode)
		}
	}

	var entries []models.EscrowLedgerEntry
	if err := database.DB.Find(&entries).Error; err != nil {
		return nil, err
	}
	sessionEntries := make(map[uint]models.EscrowLedgerEntry)
	for _, e := range entries {
		if e.SubjectType == models.SubjectSession {
			sessionEntries[e.SubjectID] = e
		}
		if e.Status == models.EscrowHeld {
			continue
		}
		if e.HeldCents != e.RefundedCents+e.ForfeitedCents+e.CoachShareCents+e.PlatformShareCents {
			subject := fmt.Sprintf("%s/%d", e.SubjectType, e.SubjectID)
			log.Printf("🚨 escrow %s does not conserve: held %d vs refund %d + forfeit %d + coach %d + platform %d",
				subject, e.HeldCents, e.RefundedCents, e.ForfeitedCents, e.CoachShareCents, e.PlatformShareCents)
			report.EscrowMismatches = append(report.EscrowMismatches, subject)
		}
	}

	// Settled sessions: the distributed shares must equal price × seats
	// still confirmed at settlement time.
	var sessions []models.ClassSession
	if err := database.DB.Where("revenue_distributed = true").Find(&sessions).Error; err != nil {
		return nil, err
	}
	for _, s := range sessions {
		e, ok := sessionEntries[s.ID]
		if !ok {
			report.SettlementMismatches = append(report.SettlementMismatches,
				fmt.Sprintf("SESSION/%d has no escrow entry", s.ID))
			continue
		}
		settled := e.CoachShareCents + e.PlatformShareCents
		expected := s.PriceCents * int64(s.CurrentParticipants)
		if settled != expected {
			log.Printf("🚨 session %d settled %d but price×participants is %d", s.ID, settled, expected)
			report.SettlementMismatches = append(report.SettlementMismatches,
				fmt.Sprintf("SESSION/%d settled %d expected %d", s.ID, settled, expected))
		}
	}

	pool, err := PlatformEscrowBalance()
	if err != nil {
		return nil, err
	}
	revenue, err := PlatformRevenue()
	if err != nil {
		return nil, err
	}
	report.EscrowPoolBalance = pool
	report.PlatformRevenue = revenue
	report.Clean = len(report.WalletMismatches) == 0 &&
		len(report.EscrowMismatches) == 0 &&
		len(report.SettlementMismatches) == 0
	return report, nil
}
