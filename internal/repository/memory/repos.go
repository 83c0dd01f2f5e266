package memory

import (
	"context"
	"sort"
	"time"

	"rental-ledger-backend/internal/domain"

	"github.com/google/uuid"
)

type userRepository struct{ v *view }

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var out *domain.User
	err := r.v.do(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

type productRepository struct{ v *view }

func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var out *domain.Product
	err := r.v.do(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

type accountRepository struct{ v *view }

func (r *accountRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Account, error) {
	var out *domain.Account
	err := r.v.do(func(st *state) error {
		a, ok := st.accounts[userID]
		if !ok {
			return domain.ErrNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *accountRepository) LockByUserID(ctx context.Context, userID int64) (*domain.Account, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *accountRepository) Ensure(ctx context.Context, userID int64) (*domain.Account, error) {
	var out *domain.Account
	err := r.v.do(func(st *state) error {
		a, ok := st.accounts[userID]
		if !ok {
			now := time.Now().UTC()
			a = domain.Account{ID: st.nextID(), UserID: userID, CreatedAt: now, UpdatedAt: now}
			st.accounts[userID] = a
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *accountRepository) Debit(ctx context.Context, userID, amount int64) (domain.BalanceChange, error) {
	if err := domain.CheckAmount(amount); err != nil {
		return domain.BalanceChange{}, err
	}
	var change domain.BalanceChange
	err := r.v.do(func(st *state) error {
		a, ok := st.accounts[userID]
		if !ok {
			return domain.ErrNotFound
		}
		if a.Balance < amount {
			return domain.ErrInsufficientBalance
		}
		change.Before = a.Balance
		a.Balance -= amount
		a.UpdatedAt = time.Now().UTC()
		st.accounts[userID] = a
		change.After = a.Balance
		return nil
	})
	return change, err
}

func (r *accountRepository) Credit(ctx context.Context, userID, amount int64) (domain.BalanceChange, error) {
	var change domain.BalanceChange
	err := r.v.do(func(st *state) error {
		a, ok := st.accounts[userID]
		if !ok {
			return domain.ErrNotFound
		}
		if err := domain.CheckCredit(a.Balance, amount); err != nil {
			return err
		}
		change.Before = a.Balance
		a.Balance += amount
		a.UpdatedAt = time.Now().UTC()
		st.accounts[userID] = a
		change.After = a.Balance
		return nil
	})
	return change, err
}

func (r *accountRepository) List(ctx context.Context) ([]domain.Account, error) {
	var out []domain.Account
	err := r.v.do(func(st *state) error {
		for _, a := range st.accounts {
			out = append(out, a)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
		return nil
	})
	return out, err
}

type platformAccountRepository struct{ v *view }

func (r *platformAccountRepository) Get(ctx context.Context) (*domain.PlatformAccount, error) {
	var out *domain.PlatformAccount
	err := r.v.do(func(st *state) error {
		if st.platform == nil {
			return domain.ErrPlatformAccountMissing
		}
		p := *st.platform
		out = &p
		return nil
	})
	return out, err
}

func (r *platformAccountRepository) Lock(ctx context.Context) (*domain.PlatformAccount, error) {
	return r.Get(ctx)
}

func (r *platformAccountRepository) Credit(ctx context.Context, amount int64) (domain.BalanceChange, error) {
	var change domain.BalanceChange
	err := r.v.do(func(st *state) error {
		if st.platform == nil {
			return domain.ErrPlatformAccountMissing
		}
		if err := domain.CheckCredit(st.platform.Balance, amount); err != nil {
			return err
		}
		change.Before = st.platform.Balance
		st.platform.Balance += amount
		st.platform.UpdatedAt = time.Now().UTC()
		change.After = st.platform.Balance
		return nil
	})
	return change, err
}

func (r *platformAccountRepository) Debit(ctx context.Context, amount int64) (domain.BalanceChange, error) {
	if err := domain.CheckAmount(amount); err != nil {
		return domain.BalanceChange{}, err
	}
	var change domain.BalanceChange
	err := r.v.do(func(st *state) error {
		if st.platform == nil {
			return domain.ErrPlatformAccountMissing
		}
		if st.platform.Balance < amount {
			return domain.ErrPlatformBalanceInsufficient
		}
		change.Before = st.platform.Balance
		st.platform.Balance -= amount
		st.platform.UpdatedAt = time.Now().UTC()
		change.After = st.platform.Balance
		return nil
	})
	return change, err
}

type paymentLogRepository struct{ v *view }

func (r *paymentLogRepository) Append(ctx context.Context, e *domain.PaymentLogEntry) error {
	if !e.Reconciles() {
		return domain.Newf(domain.ErrValidation, "payment log entry does not reconcile")
	}
	return r.v.do(func(st *state) error {
		e.ID = st.nextID()
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now().UTC()
		}
		st.logs = append(st.logs, *e)
		return nil
	})
}

func matchesAccount(e domain.PaymentLogEntry, ref domain.AccountRef) bool {
	if e.Account.Type != ref.Type {
		return false
	}
	return ref.Type == domain.AccountTypePlatform || e.Account.UserID == ref.UserID
}

func (r *paymentLogRepository) List(ctx context.Context, f domain.PaymentLogFilter) ([]domain.PaymentLogEntry, int64, error) {
	f.Normalize()
	var page []domain.PaymentLogEntry
	var total int64
	err := r.v.do(func(st *state) error {
		var matched []domain.PaymentLogEntry
		// newest first
		for i := len(st.logs) - 1; i >= 0; i-- {
			e := st.logs[i]
			if !matchesAccount(e, f.Account) {
				continue
			}
			if f.Kind != nil && e.Kind != *f.Kind {
				continue
			}
			if f.RentalRequestID != nil && (e.RentalRequestID == nil || *e.RentalRequestID != *f.RentalRequestID) {
				continue
			}
			if f.From != nil && e.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && !e.CreatedAt.Before(*f.To) {
				continue
			}
			matched = append(matched, e)
		}
		total = int64(len(matched))
		start := min(f.Offset(), len(matched))
		end := min(start+f.PageSize, len(matched))
		page = matched[start:end]
		return nil
	})
	return page, total, err
}

func (r *paymentLogRepository) Sum(ctx context.Context, ref domain.AccountRef) (int64, error) {
	var sum int64
	err := r.v.do(func(st *state) error {
		for _, e := range st.logs {
			if matchesAccount(e, ref) {
				sum += e.Amount
			}
		}
		return nil
	})
	return sum, err
}

type rentalRepository struct{ v *view }

func (r *rentalRepository) Create(ctx context.Context, rt *domain.RentalRequest) error {
	return r.v.do(func(st *state) error {
		now := time.Now().UTC()
		rt.ID = st.nextID()
		rt.CreatedAt, rt.UpdatedAt = now, now
		st.rentals[rt.ID] = *rt
		return nil
	})
}

func (r *rentalRepository) GetByID(ctx context.Context, id int64) (*domain.RentalRequest, error) {
	var out *domain.RentalRequest
	err := r.v.do(func(st *state) error {
		rt, ok := st.rentals[id]
		if !ok || rt.DeletedAt != nil {
			return domain.ErrNotFound
		}
		out = &rt
		return nil
	})
	return out, err
}

func (r *rentalRepository) LockByID(ctx context.Context, id int64) (*domain.RentalRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *rentalRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.RentalStatus) (bool, error) {
	var ok bool
	err := r.v.do(func(st *state) error {
		rt, found := st.rentals[id]
		if !found || rt.DeletedAt != nil || rt.Status != from {
			return nil
		}
		rt.Status = to
		rt.UpdatedAt = time.Now().UTC()
		st.rentals[id] = rt
		ok = true
		return nil
	})
	return ok, err
}

func (r *rentalRepository) HasApprovedOverlap(ctx context.Context, productID int64, start, end time.Time, excludeID int64) (bool, error) {
	var found bool
	err := r.v.do(func(st *state) error {
		for _, rt := range st.rentals {
			if rt.ProductID == productID && rt.ID != excludeID && rt.DeletedAt == nil &&
				rt.Status == domain.RentalStatusApproved && rt.Overlaps(start, end) {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *rentalRepository) HasActiveOverlapForUser(ctx context.Context, productID, userID int64, start, end time.Time) (bool, error) {
	var found bool
	err := r.v.do(func(st *state) error {
		for _, rt := range st.rentals {
			if rt.ProductID == productID && rt.UserID == userID && rt.DeletedAt == nil &&
				!rt.Status.IsTerminal() && rt.Overlaps(start, end) {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *rentalRepository) ListByUser(ctx context.Context, userID int64, status domain.RentalStatus, page, pageSize int) ([]domain.RentalRequest, int64, error) {
	var out []domain.RentalRequest
	var total int64
	err := r.v.do(func(st *state) error {
		var matched []domain.RentalRequest
		for _, rt := range st.rentals {
			if rt.UserID != userID || rt.DeletedAt != nil {
				continue
			}
			if status != "" && rt.Status != status {
				continue
			}
			matched = append(matched, rt)
		}
		sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
		total = int64(len(matched))
		start := min((page-1)*pageSize, len(matched))
		end := min(start+pageSize, len(matched))
		out = matched[start:end]
		return nil
	})
	return out, total, err
}

func (r *rentalRepository) ListApprovedEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.RentalRequest, error) {
	var out []domain.RentalRequest
	err := r.v.do(func(st *state) error {
		for _, rt := range st.rentals {
			if rt.Status == domain.RentalStatusApproved && rt.DeletedAt == nil && !rt.EndDate.After(cutoff) {
				out = append(out, rt)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].EndDate.Equal(out[j].EndDate) {
				return out[i].EndDate.Before(out[j].EndDate)
			}
			return out[i].ID < out[j].ID
		})
		if len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}

type completedRentalRepository struct{ v *view }

func (r *completedRentalRepository) Create(ctx context.Context, c *domain.CompletedRental) error {
	return r.v.do(func(st *state) error {
		for _, existing := range st.completed {
			if existing.RentalRequestID == c.RentalRequestID {
				return domain.ErrAlreadyProcessed
			}
		}
		c.ID = st.nextID()
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now().UTC()
		}
		st.completed[c.ID] = *c
		return nil
	})
}

func (r *completedRentalRepository) GetByID(ctx context.Context, id int64) (*domain.CompletedRental, error) {
	var out *domain.CompletedRental
	err := r.v.do(func(st *state) error {
		c, ok := st.completed[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *completedRentalRepository) GetByRentalRequestID(ctx context.Context, rentalRequestID int64) (*domain.CompletedRental, error) {
	var out *domain.CompletedRental
	err := r.v.do(func(st *state) error {
		for _, c := range st.completed {
			if c.RentalRequestID == rentalRequestID {
				out = &c
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

type reviewRepository struct{ v *view }

func (r *reviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	return r.v.do(func(st *state) error {
		for _, existing := range st.reviews {
			if existing.CompletedRentalID == rv.CompletedRentalID {
				return domain.ErrAlreadyReviewed
			}
		}
		rv.ID = st.nextID()
		if rv.CreatedAt.IsZero() {
			rv.CreatedAt = time.Now().UTC()
		}
		st.reviews[rv.ID] = *rv
		return nil
	})
}

func (r *reviewRepository) GetByCompletedRentalID(ctx context.Context, completedRentalID int64) (*domain.Review, error) {
	var out *domain.Review
	err := r.v.do(func(st *state) error {
		for _, rv := range st.reviews {
			if rv.CompletedRentalID == completedRentalID {
				out = &rv
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

type notificationRepository struct{ v *view }

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return r.v.do(func(st *state) error {
		n.ID = st.nextID()
		if n.CreatedOn.IsZero() {
			n.CreatedOn = time.Now().UTC()
		}
		st.notifications = append(st.notifications, *n)
		return nil
	})
}

func (r *notificationRepository) List(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, int64, error) {
	var out []domain.Notification
	var total int64
	err := r.v.do(func(st *state) error {
		var matched []domain.Notification
		for i := len(st.notifications) - 1; i >= 0; i-- {
			if st.notifications[i].UserID == userID {
				matched = append(matched, st.notifications[i])
			}
		}
		total = int64(len(matched))
		start := min(offset, len(matched))
		end := min(start+limit, len(matched))
		out = matched[start:end]
		return nil
	})
	return out, total, err
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID int64) error {
	return r.v.do(func(st *state) error {
		for i := range st.notifications {
			if st.notifications[i].ID == id && st.notifications[i].UserID == userID {
				st.notifications[i].IsRead = true
				return nil
			}
		}
		return domain.Newf(domain.ErrNotFound, "notification not found or access denied")
	})
}

type outboxRepository struct{ v *view }

func (r *outboxRepository) Enqueue(ctx context.Context, e *domain.OutboxEvent) error {
	return r.v.do(func(st *state) error {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now().UTC()
		}
		e.Status = domain.OutboxStatusPending
		st.outbox = append(st.outbox, *e)
		return nil
	})
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	var out []domain.OutboxEvent
	err := r.v.do(func(st *state) error {
		for _, e := range st.outbox {
			if e.Status == domain.OutboxStatusPending {
				out = append(out, e)
				if len(out) == limit {
					break
				}
			}
		}
		return nil
	})
	return out, err
}

func (r *outboxRepository) Claim(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := r.v.do(func(st *state) error {
		for _, e := range st.outbox {
			if e.ID == id {
				ok = e.Status == domain.OutboxStatusPending
				return nil
			}
		}
		return nil
	})
	return ok, err
}

func (r *outboxRepository) update(id string, fn func(e *domain.OutboxEvent)) error {
	return r.v.do(func(st *state) error {
		for i := range st.outbox {
			if st.outbox[i].ID == id {
				fn(&st.outbox[i])
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	return r.update(id, func(e *domain.OutboxEvent) {
		e.Status = domain.OutboxStatusSent
		e.Attempts++
		e.DispatchedAt = &at
	})
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, lastError string, giveUp bool) error {
	return r.update(id, func(e *domain.OutboxEvent) {
		e.Attempts++
		e.LastError = lastError
		if giveUp {
			e.Status = domain.OutboxStatusFailed
		}
	})
}
