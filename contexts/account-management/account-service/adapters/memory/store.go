package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"cardvault/contexts/account-management/account-service/domain/entities"
	domainerrors "cardvault/contexts/account-management/account-service/domain/errors"
	"cardvault/contexts/account-management/account-service/ports"
)

// Store is an in-memory adapter implementing the Store and Clock ports.
// It is intended for tests and local development wiring.
//
// Transactions are serialized. Each one works on a copy of the state that replaces the
// committed state only when the callback succeeds.
type Store struct {
	mu    sync.Mutex
	state state

	clockMu sync.RWMutex
	now     func() time.Time
}

type state struct {
	users      map[int64]entities.User
	cards      map[int64]entities.PaymentCard
	nextUserID int64
	nextCardID int64
}

func NewStore() *Store {
	return &Store{
		state: state{
			users:      make(map[int64]entities.User),
			cards:      make(map[int64]entities.PaymentCard),
			nextUserID: 1,
			nextCardID: 1,
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Now implements ports.Clock.
func (s *Store) Now() time.Time {
	s.clockMu.RLock()
	defer s.clockMu.RUnlock()
	return s.now()
}

// SetNow pins the clock for tests.
func (s *Store) SetNow(now func() time.Time) {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	s.now = now
}

// Atomically implements ports.Store.
func (s *Store) Atomically(ctx context.Context, fn func(tx ports.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

func (st state) clone() state {
	out := state{
		users:      make(map[int64]entities.User, len(st.users)),
		cards:      make(map[int64]entities.PaymentCard, len(st.cards)),
		nextUserID: st.nextUserID,
		nextCardID: st.nextCardID,
	}
	for id, user := range st.users {
		out.users[id] = user
	}
	for id, card := range st.cards {
		out.cards[id] = card
	}
	return out
}

type memTx struct {
	state state
}

func (t *memTx) Users() ports.UserRepository { return userRepo{tx: t} }

func (t *memTx) Cards() ports.CardRepository { return cardRepo{tx: t} }

type userRepo struct {
	tx *memTx
}

func (r userRepo) GetUser(_ context.Context, userID int64) (entities.User, error) {
	user, ok := r.tx.state.users[userID]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

// LockUser needs no extra locking: transactions are already serialized.
func (r userRepo) LockUser(ctx context.Context, userID int64) (entities.User, error) {
	return r.GetUser(ctx, userID)
}

func (r userRepo) GetUserByEmail(_ context.Context, email string) (entities.User, error) {
	for _, user := range r.tx.state.users {
		if user.Email == email {
			return user, nil
		}
	}
	return entities.User{}, domainerrors.ErrUserNotFound
}

func (r userRepo) EmailExists(_ context.Context, email string, excludeUserID int64) (bool, error) {
	for _, user := range r.tx.state.users {
		if user.Email == email && user.ID != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (r userRepo) ListUsers(_ context.Context, filter ports.UserFilter) (entities.Page[entities.User], error) {
	name := strings.ToLower(filter.Name)
	surname := strings.ToLower(filter.Surname)

	matched := make([]entities.User, 0, len(r.tx.state.users))
	for _, user := range r.tx.state.users {
		if name != "" && !strings.Contains(strings.ToLower(user.Name), name) {
			continue
		}
		if surname != "" && !strings.Contains(strings.ToLower(user.Surname), surname) {
			continue
		}
		matched = append(matched, user)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return entities.NewPage(window(matched, filter.Page), filter.Page, int64(len(matched))), nil
}

func (r userRepo) CreateUser(_ context.Context, user entities.User) (entities.User, error) {
	for _, existing := range r.tx.state.users {
		if existing.Email == user.Email {
			return entities.User{}, domainerrors.ErrEmailTaken
		}
	}
	user.ID = r.tx.state.nextUserID
	user.Version = 1
	r.tx.state.nextUserID++
	r.tx.state.users[user.ID] = user
	return user, nil
}

func (r userRepo) SaveUser(_ context.Context, user entities.User) (entities.User, error) {
	current, ok := r.tx.state.users[user.ID]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	if current.Version != user.Version {
		return entities.User{}, domainerrors.ErrConcurrentUpdate
	}
	for _, existing := range r.tx.state.users {
		if existing.ID != user.ID && existing.Email == user.Email {
			return entities.User{}, domainerrors.ErrEmailTaken
		}
	}
	user.CreatedAt = current.CreatedAt
	user.Version++
	r.tx.state.users[user.ID] = user
	return user, nil
}

func (r userRepo) DeleteUser(_ context.Context, userID int64) error {
	if _, ok := r.tx.state.users[userID]; !ok {
		return domainerrors.ErrUserNotFound
	}
	delete(r.tx.state.users, userID)
	return nil
}

type cardRepo struct {
	tx *memTx
}

func (r cardRepo) GetCard(_ context.Context, cardID int64) (entities.PaymentCard, error) {
	card, ok := r.tx.state.cards[cardID]
	if !ok {
		return entities.PaymentCard{}, domainerrors.ErrCardNotFound
	}
	return card, nil
}

func (r cardRepo) ListCardsByOwner(_ context.Context, ownerID int64) ([]entities.PaymentCard, error) {
	items := make([]entities.PaymentCard, 0)
	for _, card := range r.tx.state.cards {
		if card.OwnerID == ownerID {
			items = append(items, card)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r cardRepo) CountCardsByOwner(_ context.Context, ownerID int64) (int64, error) {
	var count int64
	for _, card := range r.tx.state.cards {
		if card.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (r cardRepo) NumberExists(_ context.Context, number string, excludeCardID int64) (bool, error) {
	for _, card := range r.tx.state.cards {
		if card.Number == number && card.ID != excludeCardID {
			return true, nil
		}
	}
	return false, nil
}

func (r cardRepo) ListCards(_ context.Context, page entities.PageRequest) (entities.Page[entities.PaymentCard], error) {
	all := make([]entities.PaymentCard, 0, len(r.tx.state.cards))
	for _, card := range r.tx.state.cards {
		all = append(all, card)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return entities.NewPage(window(all, page), page, int64(len(all))), nil
}

func (r cardRepo) CreateCard(_ context.Context, card entities.PaymentCard) (entities.PaymentCard, error) {
	if _, ok := r.tx.state.users[card.OwnerID]; !ok {
		return entities.PaymentCard{}, domainerrors.ErrUserNotFound
	}
	for _, existing := range r.tx.state.cards {
		if existing.Number == card.Number {
			return entities.PaymentCard{}, domainerrors.ErrCardNumberTaken
		}
	}
	card.ID = r.tx.state.nextCardID
	card.Version = 1
	r.tx.state.nextCardID++
	r.tx.state.cards[card.ID] = card
	return card, nil
}

func (r cardRepo) SaveCard(_ context.Context, card entities.PaymentCard) (entities.PaymentCard, error) {
	current, ok := r.tx.state.cards[card.ID]
	if !ok {
		return entities.PaymentCard{}, domainerrors.ErrCardNotFound
	}
	if current.Version != card.Version {
		return entities.PaymentCard{}, domainerrors.ErrConcurrentUpdate
	}
	for _, existing := range r.tx.state.cards {
		if existing.ID != card.ID && existing.Number == card.Number {
			return entities.PaymentCard{}, domainerrors.ErrCardNumberTaken
		}
	}
	card.OwnerID = current.OwnerID
	card.CreatedAt = current.CreatedAt
	card.Version++
	r.tx.state.cards[card.ID] = card
	return card, nil
}

func (r cardRepo) DeleteCard(_ context.Context, cardID int64) error {
	if _, ok := r.tx.state.cards[cardID]; !ok {
		return domainerrors.ErrCardNotFound
	}
	delete(r.tx.state.cards, cardID)
	return nil
}

func (r cardRepo) DeleteCardsByOwner(ctx context.Context, ownerID int64) ([]entities.PaymentCard, error) {
	removed, err := r.ListCardsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, card := range removed {
		delete(r.tx.state.cards, card.ID)
	}
	return removed, nil
}

func window[T any](items []T, page entities.PageRequest) []T {
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
