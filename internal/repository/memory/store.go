// Package memory is a process-local implementation of repository.Store used by
// the "memory" database driver and by service tests. A transaction holds the
// store's single mutex for its whole duration, so transactions are fully
// serialized, and a failed transaction restores the snapshot taken when it began.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/repository"
)

type state struct {
	seq           int64
	users         map[int64]domain.User
	products      map[int64]domain.Product
	accounts      map[int64]domain.Account // by user id
	platform      *domain.PlatformAccount
	logs          []domain.PaymentLogEntry
	rentals       map[int64]domain.RentalRequest
	completed     map[int64]domain.CompletedRental
	reviews       map[int64]domain.Review
	notifications []domain.Notification
	outbox        []domain.OutboxEvent
}

func newState() *state {
	return &state{
		users:     map[int64]domain.User{},
		products:  map[int64]domain.Product{},
		accounts:  map[int64]domain.Account{},
		platform:  &domain.PlatformAccount{ID: domain.PlatformAccountID, UpdatedAt: time.Now().UTC()},
		rentals:   map[int64]domain.RentalRequest{},
		completed: map[int64]domain.CompletedRental{},
		reviews:   map[int64]domain.Review{},
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *state) clone() *state {
	c := *s
	c.users = maps.Clone(s.users)
	c.products = maps.Clone(s.products)
	c.accounts = maps.Clone(s.accounts)
	if s.platform != nil {
		p := *s.platform
		c.platform = &p
	}
	c.logs = slices.Clone(s.logs)
	c.rentals = maps.Clone(s.rentals)
	c.completed = maps.Clone(s.completed)
	c.reviews = maps.Clone(s.reviews)
	c.notifications = slices.Clone(s.notifications)
	c.outbox = slices.Clone(s.outbox)
	return &c
}

type view struct {
	store *Store
	inTx  bool
}

// do runs fn against the current state, taking the store mutex unless the
// caller already holds it as part of a transaction.
func (v *view) do(fn func(st *state) error) error {
	if !v.inTx {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	return fn(v.store.st)
}

func (v *view) Users() repository.UserRepository       { return &userRepository{v} }
func (v *view) Products() repository.ProductRepository { return &productRepository{v} }
func (v *view) Accounts() repository.AccountRepository { return &accountRepository{v} }
func (v *view) Platform() repository.PlatformAccountRepository {
	return &platformAccountRepository{v}
}
func (v *view) PaymentLogs() repository.PaymentLogRepository { return &paymentLogRepository{v} }
func (v *view) Rentals() repository.RentalRepository         { return &rentalRepository{v} }
func (v *view) CompletedRentals() repository.CompletedRentalRepository {
	return &completedRentalRepository{v}
}
func (v *view) Reviews() repository.ReviewRepository { return &reviewRepository{v} }
func (v *view) Notifications() repository.NotificationRepository {
	return &notificationRepository{v}
}
func (v *view) Outbox() repository.OutboxRepository { return &outboxRepository{v} }

func (v *view) LockProduct(ctx context.Context, productID int64) error {
	return v.do(func(st *state) error {
		if _, ok := st.products[productID]; !ok {
			return domain.ErrNotFound
		}
		return nil
	})
}

type Store struct {
	*view
	mu sync.Mutex
	st *state
}

// NewStore returns an empty store with a zero-balance platform account
func NewStore() *Store {
	s := &Store{st: newState()}
	s.view = &view{store: s}
	return s
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	committed := false
	defer func() {
		if !committed {
			s.st = snapshot
		}
	}()

	if err := fn(ctx, &view{store: s, inTx: true}); err != nil {
		return err
	}
	committed = true
	return nil
}

// AddUser inserts or replaces a user row
func (s *Store) AddUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedOn.IsZero() {
		u.CreatedOn = time.Now().UTC()
	}
	s.st.users[u.ID] = u
}

// AddProduct inserts or replaces a catalog row
func (s *Store) AddProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[p.ID] = p
}

// ForcePlatformBalance overwrites the platform balance without a log entry.
// It exists to simulate ledger corruption.
func (s *Store) ForcePlatformBalance(balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.platform != nil {
		s.st.platform.Balance = balance
	}
}

// RemovePlatformAccount deletes the singleton platform row
func (s *Store) RemovePlatformAccount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.platform = nil
}

var _ repository.Store = (*Store)(nil)
