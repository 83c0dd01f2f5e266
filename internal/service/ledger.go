package service

import (
	"context"
	"errors"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/logger"
	"rental-ledger-backend/internal/repository"
)

type ledgerService struct {
	store repository.Store
}

func NewLedgerService(store repository.Store) LedgerService {
	return &ledgerService{store: store}
}

// GetBalance reports zero for users that never had an account
func (s *ledgerService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	acct, err := s.store.Accounts().GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

func validateLogFilter(filter *domain.PaymentLogFilter) error {
	if filter.Kind != nil && !filter.Kind.Valid() {
		return domain.Newf(domain.ErrValidation, "unknown payment kind %q", *filter.Kind)
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return domain.Newf(domain.ErrValidation, "from must not be after to")
	}
	filter.Normalize()
	return nil
}

func (s *ledgerService) GetPaymentLogs(ctx context.Context, userID int64, filter domain.PaymentLogFilter) ([]domain.PaymentLogEntry, int64, error) {
	filter.Account = domain.UserAccount(userID)
	if err := validateLogFilter(&filter); err != nil {
		return nil, 0, err
	}
	return s.store.PaymentLogs().List(ctx, filter)
}

func (s *ledgerService) GetPlatformPaymentLogs(ctx context.Context, actor domain.Principal, filter domain.PaymentLogFilter) ([]domain.PaymentLogEntry, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, domain.Newf(domain.ErrNoPermission, "platform payment logs are admin only")
	}
	filter.Account = domain.PlatformAccountRef()
	if err := validateLogFilter(&filter); err != nil {
		return nil, 0, err
	}
	return s.store.PaymentLogs().List(ctx, filter)
}

// Deposit is the only way value enters the ledger. It writes a single ETC
// entry on the user's side.
func (s *ledgerService) Deposit(ctx context.Context, actor domain.Principal, userID, amount int64, memo string) (*domain.PaymentLogEntry, error) {
	logger.EnterMethod("ledgerService.Deposit", "actorID", actor.UserID, "userID", userID, "amount", amount)

	if !actor.IsAdmin() {
		return nil, domain.Newf(domain.ErrNoPermission, "deposits are admin only")
	}
	if amount <= 0 {
		return nil, domain.Newf(domain.ErrValidation, "deposit amount must be positive")
	}
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}

	var entry *domain.PaymentLogEntry
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.Accounts().Ensure(ctx, userID); err != nil {
			return err
		}
		acct, err := tx.Accounts().LockByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if err := domain.CheckCredit(acct.Balance, amount); err != nil {
			return err
		}
		change, err := tx.Accounts().Credit(ctx, userID, amount)
		if err != nil {
			return err
		}
		entry = &domain.PaymentLogEntry{
			Account:       domain.UserAccount(userID),
			Amount:        amount,
			Kind:          domain.PaymentKindEtc,
			BalanceBefore: change.Before,
			BalanceAfter:  change.After,
			Memo:          memo,
		}
		return tx.PaymentLogs().Append(ctx, entry)
	})
	if err != nil {
		logger.ExitMethodWithError("ledgerService.Deposit", err)
		return nil, err
	}

	logger.ExitMethod("ledgerService.Deposit", "userID", userID, "balance", entry.BalanceAfter)
	return entry, nil
}

// Reconcile compares every balance with the sum of its payment log. Each
// account is checked under its row lock so in-flight writers cannot skew it.
func (s *ledgerService) Reconcile(ctx context.Context) ([]domain.Mismatch, error) {
	accounts, err := s.store.Accounts().List(ctx)
	if err != nil {
		return nil, err
	}

	var mismatches []domain.Mismatch
	for _, a := range accounts {
		ref := domain.UserAccount(a.UserID)
		err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			acct, err := tx.Accounts().LockByUserID(ctx, a.UserID)
			if err != nil {
				return err
			}
			sum, err := tx.PaymentLogs().Sum(ctx, ref)
			if err != nil {
				return err
			}
			if sum != acct.Balance {
				mismatches = append(mismatches, domain.Mismatch{Account: ref, Balance: acct.Balance, LedgerSum: sum})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		platform, err := tx.Platform().Lock(ctx)
		if err != nil {
			return err
		}
		sum, err := tx.PaymentLogs().Sum(ctx, domain.PlatformAccountRef())
		if err != nil {
			return err
		}
		if sum != platform.Balance {
			mismatches = append(mismatches, domain.Mismatch{Account: domain.PlatformAccountRef(), Balance: platform.Balance, LedgerSum: sum})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(mismatches) > 0 {
		logger.Error("Ledger reconciliation found mismatches", "count", len(mismatches))
	}
	return mismatches, nil
}
