package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/stockplan/stockplan-api/internal/model"
)

// Memory-backed implementations of the repository interfaces. They mirror the
// filter semantics of the Mongo implementations (including the strict
// expires_at > now boundary and the conditional single-use updates) and back
// the test suites.

type MemoryUserRepository struct {
	mu    sync.Mutex
	users []*model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{}
}

func (r *MemoryUserRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, ErrDuplicate
		}
	}

	now := time.Now()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	clone := *user
	r.users = append(r.users, &clone)

	return user, nil
}

func (r *MemoryUserRepository) GetUser(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID.Hex() == id {
			clone := *u
			return &clone, nil
		}
	}

	return nil, ErrNotFound
}

func (r *MemoryUserRepository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}

	return nil, ErrNotFound
}

func (r *MemoryUserRepository) UpdatePasswordHash(_ context.Context, id, passwordHash string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID.Hex() == id {
			u.PasswordHash = passwordHash
			u.UpdatedAt = now
			return nil
		}
	}

	return ErrNotFound
}

// DeleteUser removes a user row. Only tests use this, to simulate an account
// deleted between token issuance and use.
func (r *MemoryUserRepository) DeleteUser(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.users[:0]
	for _, u := range r.users {
		if u.ID.Hex() != id {
			kept = append(kept, u)
		}
	}
	r.users = kept
}

type MemoryRefreshTokenRepository struct {
	mu     sync.Mutex
	tokens []*model.RefreshToken
}

func NewMemoryRefreshTokenRepository() *MemoryRefreshTokenRepository {
	return &MemoryRefreshTokenRepository{}
}

func (r *MemoryRefreshTokenRepository) CreateToken(
	_ context.Context,
	token *model.RefreshToken,
) (*model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tokens {
		if t.TokenHash == token.TokenHash {
			return nil, ErrDuplicate
		}
	}

	token.ID = bson.NewObjectID()
	token.CreatedAt = time.Now()

	clone := *token
	r.tokens = append(r.tokens, &clone)

	return token, nil
}

func (r *MemoryRefreshTokenRepository) RevokeValidToken(
	_ context.Context,
	tokenHash string,
	now time.Time,
) (*model.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tokens {
		if t.TokenHash == tokenHash && t.RevokedAt == nil && t.ExpiresAt.After(now) {
			before := *t
			revokedAt := now
			t.RevokedAt = &revokedAt
			return &before, nil
		}
	}

	return nil, ErrNotFound
}

func (r *MemoryRefreshTokenRepository) DeleteStaleTokens(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	kept := r.tokens[:0]
	for _, t := range r.tokens {
		if !t.ExpiresAt.After(now) || t.RevokedAt != nil {
			deleted++
			continue
		}
		kept = append(kept, t)
	}
	r.tokens = kept

	return deleted, nil
}

// Count reports the number of stored rows. Only tests use this.
func (r *MemoryRefreshTokenRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

type MemoryPasswordResetTokenRepository struct {
	mu     sync.Mutex
	tokens []*model.PasswordResetToken
}

func NewMemoryPasswordResetTokenRepository() *MemoryPasswordResetTokenRepository {
	return &MemoryPasswordResetTokenRepository{}
}

func (r *MemoryPasswordResetTokenRepository) CreateToken(
	_ context.Context,
	token *model.PasswordResetToken,
) (*model.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token.ID = bson.NewObjectID()
	token.CreatedAt = time.Now()
	token.UsedAt = nil

	clone := *token
	r.tokens = append(r.tokens, &clone)

	return token, nil
}

func (r *MemoryPasswordResetTokenRepository) ConsumeValidToken(
	_ context.Context,
	userID bson.ObjectID,
	codeHash string,
	now time.Time,
) (*model.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var match *model.PasswordResetToken
	for _, t := range r.tokens {
		if t.UserID != userID || t.CodeHash != codeHash || t.UsedAt != nil || !t.ExpiresAt.After(now) {
			continue
		}
		if match == nil || t.CreatedAt.After(match.CreatedAt) {
			match = t
		}
	}

	if match == nil {
		return nil, ErrNotFound
	}

	usedAt := now
	match.UsedAt = &usedAt

	clone := *match
	return &clone, nil
}

func (r *MemoryPasswordResetTokenRepository) DeleteExpiredTokens(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	kept := r.tokens[:0]
	for _, t := range r.tokens {
		if !t.ExpiresAt.After(now) {
			deleted++
			continue
		}
		kept = append(kept, t)
	}
	r.tokens = kept

	return deleted, nil
}

// Count reports the number of stored rows. Only tests use this.
func (r *MemoryPasswordResetTokenRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

type MemoryStockRepository struct {
	mu     sync.Mutex
	stocks []*model.Stock
}

func NewMemoryStockRepository() *MemoryStockRepository {
	return &MemoryStockRepository{}
}

func (r *MemoryStockRepository) ListStocks(_ context.Context, userID bson.ObjectID) ([]*model.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stocks []*model.Stock
	for _, s := range r.stocks {
		if s.UserID == userID {
			clone := *s
			stocks = append(stocks, &clone)
		}
	}

	sort.Slice(stocks, func(i, j int) bool {
		return stocks[i].CreatedAt.After(stocks[j].CreatedAt)
	})

	return stocks, nil
}

func (r *MemoryStockRepository) GetStock(_ context.Context, id string, userID bson.ObjectID) (*model.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.stocks {
		if s.ID.Hex() == id && s.UserID == userID {
			clone := *s
			return &clone, nil
		}
	}

	return nil, ErrNotFound
}

func (r *MemoryStockRepository) GetStockBySymbol(
	_ context.Context,
	userID bson.ObjectID,
	symbol string,
) (*model.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.stocks {
		if s.UserID == userID && s.Symbol == symbol {
			clone := *s
			return &clone, nil
		}
	}

	return nil, ErrNotFound
}

func (r *MemoryStockRepository) CreateStock(_ context.Context, stock *model.Stock) (*model.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	stock.ID = bson.NewObjectID()
	stock.CreatedAt = now
	stock.UpdatedAt = now

	clone := *stock
	r.stocks = append(r.stocks, &clone)

	return stock, nil
}

func (r *MemoryStockRepository) UpdateStock(
	_ context.Context,
	id string,
	userID bson.ObjectID,
	fields StockFields,
) (*model.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.stocks {
		if s.ID.Hex() == id && s.UserID == userID {
			s.Symbol = fields.Symbol
			s.Shares = fields.Shares
			s.BuyPrice = fields.BuyPrice
			s.BuyDate = fields.BuyDate
			s.Notes = fields.Notes
			s.UpdatedAt = time.Now()

			clone := *s
			return &clone, nil
		}
	}

	return nil, ErrNotFound
}

func (r *MemoryStockRepository) DeleteStock(_ context.Context, id string, userID bson.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.stocks[:0]
	found := false
	for _, s := range r.stocks {
		if s.ID.Hex() == id && s.UserID == userID {
			found = true
			continue
		}
		kept = append(kept, s)
	}
	r.stocks = kept

	if !found {
		return ErrNotFound
	}

	return nil
}

type MemoryWatchlistRepository struct {
	mu    sync.Mutex
	items []*model.WatchlistItem
}

func NewMemoryWatchlistRepository() *MemoryWatchlistRepository {
	return &MemoryWatchlistRepository{}
}

func (r *MemoryWatchlistRepository) ListItems(_ context.Context, userID bson.ObjectID) ([]*model.WatchlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var items []*model.WatchlistItem
	for _, item := range r.items {
		if item.UserID == userID {
			clone := *item
			items = append(items, &clone)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	return items, nil
}

func (r *MemoryWatchlistRepository) GetItemBySymbol(
	_ context.Context,
	userID bson.ObjectID,
	symbol string,
) (*model.WatchlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.UserID == userID && item.Symbol == symbol {
			clone := *item
			return &clone, nil
		}
	}

	return nil, ErrNotFound
}

func (r *MemoryWatchlistRepository) CreateItem(
	_ context.Context,
	item *model.WatchlistItem,
) (*model.WatchlistItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.UserID == item.UserID && existing.Symbol == item.Symbol {
			return nil, ErrDuplicate
		}
	}

	now := time.Now()
	item.ID = bson.NewObjectID()
	item.CreatedAt = now
	item.UpdatedAt = now

	clone := *item
	r.items = append(r.items, &clone)

	return item, nil
}

func (r *MemoryWatchlistRepository) DeleteItem(_ context.Context, id string, userID bson.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.items[:0]
	found := false
	for _, item := range r.items {
		if item.ID.Hex() == id && item.UserID == userID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	r.items = kept

	if !found {
		return ErrNotFound
	}

	return nil
}

type MemoryBrokerConnectionRepository struct {
	mu          sync.Mutex
	connections []*model.BrokerConnection
}

func NewMemoryBrokerConnectionRepository() *MemoryBrokerConnectionRepository {
	return &MemoryBrokerConnectionRepository{}
}

func (r *MemoryBrokerConnectionRepository) ListConnections(
	_ context.Context,
	userID bson.ObjectID,
) ([]*model.BrokerConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var connections []*model.BrokerConnection
	for _, c := range r.connections {
		if c.UserID == userID {
			clone := *c
			connections = append(connections, &clone)
		}
	}

	sort.Slice(connections, func(i, j int) bool {
		return connections[i].UpdatedAt.After(connections[j].UpdatedAt)
	})

	return connections, nil
}

func (r *MemoryBrokerConnectionRepository) GetConnectionByProvider(
	_ context.Context,
	userID bson.ObjectID,
	provider string,
) (*model.BrokerConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.connections {
		if c.UserID == userID && c.Provider == provider {
			clone := *c
			return &clone, nil
		}
	}

	return nil, ErrNotFound
}

func (r *MemoryBrokerConnectionRepository) UpsertCSVImport(
	_ context.Context,
	userID bson.ObjectID,
	provider string,
	now time.Time,
) (*model.BrokerConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.connections {
		if c.UserID == userID && c.Provider == provider {
			if c.AccessToken == nil && c.RefreshToken == nil && c.ExternalID == nil {
				c.Status = BrokerStatusCSV
			}
			c.UpdatedAt = now

			clone := *c
			return &clone, nil
		}
	}

	connection := &model.BrokerConnection{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		Provider:  provider,
		Status:    BrokerStatusCSV,
		CreatedAt: now,
		UpdatedAt: now,
	}

	clone := *connection
	r.connections = append(r.connections, &clone)

	return connection, nil
}

type MemoryResearchRepository struct {
	mu    sync.Mutex
	notes []*model.ResearchNote
}

func NewMemoryResearchRepository() *MemoryResearchRepository {
	return &MemoryResearchRepository{}
}

func (r *MemoryResearchRepository) ListNotes(_ context.Context, userID bson.ObjectID) ([]*model.ResearchNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var notes []*model.ResearchNote
	for _, n := range r.notes {
		if n.UserID == userID {
			clone := *n
			notes = append(notes, &clone)
		}
	}

	sort.Slice(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})

	return notes, nil
}

func (r *MemoryResearchRepository) GetNote(_ context.Context, id string, userID bson.ObjectID) (*model.ResearchNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notes {
		if n.ID.Hex() == id && n.UserID == userID {
			clone := *n
			return &clone, nil
		}
	}

	return nil, ErrNotFound
}

func (r *MemoryResearchRepository) CreateNote(_ context.Context, note *model.ResearchNote) (*model.ResearchNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	note.ID = bson.NewObjectID()
	note.CreatedAt = now
	note.UpdatedAt = now

	clone := *note
	r.notes = append(r.notes, &clone)

	return note, nil
}

func (r *MemoryResearchRepository) UpdateNote(
	_ context.Context,
	id string,
	userID bson.ObjectID,
	fields ResearchNoteFields,
) (*model.ResearchNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notes {
		if n.ID.Hex() == id && n.UserID == userID {
			n.Symbol = fields.Symbol
			n.Title = fields.Title
			n.Thesis = fields.Thesis
			n.Risks = fields.Risks
			n.Catalysts = fields.Catalysts
			n.ReferenceLinks = fields.ReferenceLinks
			n.UpdatedAt = time.Now()

			clone := *n
			return &clone, nil
		}
	}

	return nil, ErrNotFound
}

func (r *MemoryResearchRepository) DeleteNote(_ context.Context, id string, userID bson.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.notes[:0]
	found := false
	for _, n := range r.notes {
		if n.ID.Hex() == id && n.UserID == userID {
			found = true
			continue
		}
		kept = append(kept, n)
	}
	r.notes = kept

	if !found {
		return ErrNotFound
	}

	return nil
}

type MemoryTargetRepository struct {
	mu      sync.Mutex
	targets []*model.Target
}

func NewMemoryTargetRepository() *MemoryTargetRepository {
	return &MemoryTargetRepository{}
}

func (r *MemoryTargetRepository) ListTargets(_ context.Context, userID bson.ObjectID) ([]*model.Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var targets []*model.Target
	for _, t := range r.targets {
		if t.UserID == userID {
			clone := *t
			targets = append(targets, &clone)
		}
	}

	sort.Slice(targets, func(i, j int) bool {
		return targets[i].CreatedAt.After(targets[j].CreatedAt)
	})

	return targets, nil
}

func (r *MemoryTargetRepository) CreateTarget(_ context.Context, target *model.Target) (*model.Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	target.ID = bson.NewObjectID()
	target.CreatedAt = now
	target.UpdatedAt = now

	clone := *target
	r.targets = append(r.targets, &clone)

	return target, nil
}

func (r *MemoryTargetRepository) UpdateTarget(
	_ context.Context,
	id string,
	userID bson.ObjectID,
	fields TargetFields,
) (*model.Target, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.targets {
		if t.ID.Hex() == id && t.UserID == userID {
			t.Symbol = fields.Symbol
			t.Scenario = fields.Scenario
			t.TargetPrice = fields.TargetPrice
			t.TargetDate = fields.TargetDate
			t.Rationale = fields.Rationale
			t.UpdatedAt = time.Now()

			clone := *t
			return &clone, nil
		}
	}

	return nil, ErrNotFound
}

func (r *MemoryTargetRepository) DeleteTarget(_ context.Context, id string, userID bson.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.targets[:0]
	found := false
	for _, t := range r.targets {
		if t.ID.Hex() == id && t.UserID == userID {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	r.targets = kept

	if !found {
		return ErrNotFound
	}

	return nil
}
