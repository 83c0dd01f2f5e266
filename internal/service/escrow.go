package service

import (
	"context"
	"errors"
	"fmt"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/repository"
)

// Every booking fund movement is written as a pair: one entry on the renter's
// account and one on the platform account, inside the caller's transaction.

func appendEntry(ctx context.Context, tx repository.Tx, ref domain.AccountRef, rentalID int64, kind domain.PaymentKind, amount int64, change domain.BalanceChange, memo string) error {
	entry := &domain.PaymentLogEntry{
		Account:       ref,
		Amount:        amount,
		Kind:          kind,
		BalanceBefore: change.Before,
		BalanceAfter:  change.After,
		Memo:          memo,
	}
	if rentalID != 0 {
		entry.RentalRequestID = &rentalID
	}
	if err := tx.PaymentLogs().Append(ctx, entry); err != nil {
		return fmt.Errorf("append %s entry: %w", kind, err)
	}
	return nil
}

// lockRenterAccount serializes writers on the renter's balance. A renter
// without an account has nothing to spend.
func lockRenterAccount(ctx context.Context, tx repository.Tx, userID int64) (*domain.Account, error) {
	acct, err := tx.Accounts().LockByUserID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Newf(domain.ErrInsufficientBalance, "user %d has no balance account", userID)
	}
	return acct, err
}

// debitRenter takes the rental price from the renter only if the balance covers it
func debitRenter(ctx context.Context, tx repository.Tx, userID, amount int64) (domain.BalanceChange, error) {
	change, err := tx.Accounts().Debit(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			return change, domain.Newf(domain.ErrInsufficientBalance, "balance does not cover %d", amount)
		}
		return change, err
	}
	return change, nil
}

// recordRentalPayment writes the renter's RENTAL_PAYMENT entry for a debit that
// already happened and moves the same amount into the platform account.
func recordRentalPayment(ctx context.Context, tx repository.Tx, rt *domain.RentalRequest, userChange domain.BalanceChange) error {
	memo := fmt.Sprintf("rental request %d", rt.ID)
	if err := appendEntry(ctx, tx, domain.UserAccount(rt.UserID), rt.ID, domain.PaymentKindRentalPayment, -rt.TotalPrice, userChange, memo); err != nil {
		return err
	}

	if _, err := tx.Platform().Lock(ctx); err != nil {
		return err
	}
	platformChange, err := tx.Platform().Credit(ctx, rt.TotalPrice)
	if err != nil {
		return err
	}
	return appendEntry(ctx, tx, domain.PlatformAccountRef(), rt.ID, domain.PaymentKindIncome, rt.TotalPrice, platformChange, memo)
}

// refundRental returns the full frozen price from the platform to the renter
func refundRental(ctx context.Context, tx repository.Tx, rt *domain.RentalRequest, reason string) error {
	memo := fmt.Sprintf("refund of rental request %d (%s)", rt.ID, reason)

	userChange, err := tx.Accounts().Credit(ctx, rt.UserID, rt.TotalPrice)
	if err != nil {
		return fmt.Errorf("credit renter %d: %w", rt.UserID, err)
	}
	if err := appendEntry(ctx, tx, domain.UserAccount(rt.UserID), rt.ID, domain.PaymentKindRefund, rt.TotalPrice, userChange, memo); err != nil {
		return err
	}

	platform, err := tx.Platform().Lock(ctx)
	if err != nil {
		return err
	}
	if platform.Balance < rt.TotalPrice {
		return domain.Newf(domain.ErrPlatformBalanceInsufficient,
			"platform balance %d cannot cover refund of %d for rental request %d", platform.Balance, rt.TotalPrice, rt.ID)
	}
	platformChange, err := tx.Platform().Debit(ctx, rt.TotalPrice)
	if err != nil {
		return err
	}
	return appendEntry(ctx, tx, domain.PlatformAccountRef(), rt.ID, domain.PaymentKindRefund, -rt.TotalPrice, platformChange, memo)
}
