package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/pokernow/models"
)

// MemoryStore keeps every entity in process memory. It backs local runs
// without DATABASE_URL and the service tests. The partial unique indexes of
// the seatings table are enforced on insert, the same way Postgres does.
type MemoryStore struct {
	mu          sync.RWMutex
	shops       map[string]*models.Shop
	players     map[string]*models.Player
	tables      map[string]*models.Table
	seatings    map[string]*models.Seating
	tournaments map[string]*models.Tournament
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		shops:       make(map[string]*models.Shop),
		players:     make(map[string]*models.Player),
		tables:      make(map[string]*models.Table),
		seatings:    make(map[string]*models.Seating),
		tournaments: make(map[string]*models.Tournament),
	}
}

func (m *MemoryStore) Shops() ShopRepository             { return memoryShops{m} }
func (m *MemoryStore) Players() PlayerRepository         { return memoryPlayers{m} }
func (m *MemoryStore) Tables() TableRepository           { return memoryTables{m} }
func (m *MemoryStore) Seatings() SeatingRepository       { return memorySeatings{m} }
func (m *MemoryStore) Tournaments() TournamentRepository { return memoryTournaments{m} }

// Transactor runs fn directly. Callers are expected to hold the keyed locks
// covering the rows they touch.
func (m *MemoryStore) Transactor() Transactor { return memoryTransactor{} }

type memoryTransactor struct{}

func (memoryTransactor) WithinTx(_ context.Context, fn func(exec SQLExecutor) error) error {
	return fn(nil)
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}

// --- shops ---

type memoryShops struct{ m *MemoryStore }

func (r memoryShops) Create(_ context.Context, shop *models.Shop) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stamp(&shop.CreatedAt)
	shop.UpdatedAt = shop.CreatedAt
	c := *shop
	r.m.shops[shop.ID] = &c
	return nil
}

func (r memoryShops) GetByID(_ context.Context, id string) (*models.Shop, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	shop, ok := r.m.shops[id]
	if !ok {
		return nil, ErrShopNotFound
	}
	c := *shop
	return &c, nil
}

func (r memoryShops) List(_ context.Context) ([]*models.Shop, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	shops := make([]*models.Shop, 0, len(r.m.shops))
	for _, shop := range r.m.shops {
		c := *shop
		shops = append(shops, &c)
	}
	sort.Slice(shops, func(i, j int) bool { return shops[i].Name < shops[j].Name })
	return shops, nil
}

// --- players ---

type memoryPlayers struct{ m *MemoryStore }

func (r memoryPlayers) Create(_ context.Context, p *models.Player) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if p.Email != "" {
		for _, existing := range r.m.players {
			if existing.Email == p.Email {
				return ErrPlayerEmailConflict
			}
		}
	}
	stamp(&p.CreatedAt)
	p.UpdatedAt = p.CreatedAt
	c := *p
	r.m.players[p.ID] = &c
	return nil
}

func (r memoryPlayers) GetByID(_ context.Context, id string) (*models.Player, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	p, ok := r.m.players[id]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	c := *p
	return &c, nil
}

func (r memoryPlayers) GetByEmail(_ context.Context, email string) (*models.Player, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, p := range r.m.players {
		if p.Email != "" && p.Email == email {
			c := *p
			return &c, nil
		}
	}
	return nil, ErrPlayerNotFound
}

func (r memoryPlayers) GetByIDs(_ context.Context, ids []string) (map[string]*models.Player, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	players := make(map[string]*models.Player, len(ids))
	for _, id := range ids {
		if p, ok := r.m.players[id]; ok {
			c := *p
			players[id] = &c
		}
	}
	return players, nil
}

// --- tables ---

type memoryTables struct{ m *MemoryStore }

func (r memoryTables) Create(_ context.Context, table *models.Table) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.shops[table.ShopID]; !ok {
		return ErrTableInvalidShop
	}
	for _, existing := range r.m.tables {
		if existing.ShopID == table.ShopID && existing.Name == table.Name {
			return ErrTableNameExists
		}
	}
	stamp(&table.CreatedAt)
	c := *table
	r.m.tables[table.ID] = &c
	return nil
}

func (r memoryTables) GetByID(_ context.Context, _ SQLExecutor, id string) (*models.Table, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	table, ok := r.m.tables[id]
	if !ok {
		return nil, ErrTableNotFound
	}
	c := *table
	return &c, nil
}

func (r memoryTables) GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Table, error) {
	return r.GetByID(ctx, exec, id)
}

func (r memoryTables) ListByShop(_ context.Context, shopID string) ([]*models.Table, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	tables := make([]*models.Table, 0)
	for _, table := range r.m.tables {
		if table.ShopID == shopID {
			c := *table
			tables = append(tables, &c)
		}
	}
	sort.Slice(tables, func(i, j int) bool {
		if tables[i].Name != tables[j].Name {
			return tables[i].Name < tables[j].Name
		}
		return tables[i].CreatedAt.Before(tables[j].CreatedAt)
	})
	return tables, nil
}

func (r memoryTables) Update(_ context.Context, _ SQLExecutor, table *models.Table) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	existing, ok := r.m.tables[table.ID]
	if !ok {
		return ErrTableNotFound
	}
	for _, other := range r.m.tables {
		if other.ID != table.ID && other.ShopID == existing.ShopID && other.Name == table.Name {
			return ErrTableNameExists
		}
	}
	existing.Name = table.Name
	existing.MaxSeats = table.MaxSeats
	existing.IsActive = table.IsActive
	return nil
}

func (r memoryTables) UpdateQRImageKey(_ context.Context, id string, key *string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	existing, ok := r.m.tables[id]
	if !ok {
		return ErrTableNotFound
	}
	existing.QRImageKey = key
	return nil
}

// --- seatings ---

type memorySeatings struct{ m *MemoryStore }

func (r memorySeatings) LockPlayer(context.Context, SQLExecutor, string) error { return nil }

func (r memorySeatings) Create(_ context.Context, _ SQLExecutor, s *models.Seating) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.players[s.PlayerID]; !ok {
		return ErrSeatingInvalidRefs
	}
	table, ok := r.m.tables[s.TableID]
	if !ok {
		return ErrSeatingInvalidRefs
	}
	if s.SeatNumber != nil && (*s.SeatNumber < 1 || *s.SeatNumber > models.MaxSeatsPerTable) {
		return ErrSeatNumberOutOfRange
	}
	for _, existing := range r.m.seatings {
		if existing.Status != models.SeatingActive {
			continue
		}
		if existing.PlayerID == s.PlayerID {
			return ErrSeatingPlayerActive
		}
		if s.SeatNumber != nil && existing.SeatNumber != nil &&
			existing.TableID == table.ID && *existing.SeatNumber == *s.SeatNumber {
			return ErrSeatingSeatTaken
		}
	}
	r.m.seatings[s.ID] = copySeating(s)
	return nil
}

func (r memorySeatings) GetActiveByPlayer(_ context.Context, _ SQLExecutor, playerID string) (*models.Seating, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, s := range r.m.seatings {
		if s.PlayerID == playerID && s.Status == models.SeatingActive {
			return copySeating(s), nil
		}
	}
	return nil, ErrSeatingNotFound
}

func (r memorySeatings) CountActiveByTable(_ context.Context, _ SQLExecutor, tableID string) (int, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	n := 0
	for _, s := range r.m.seatings {
		if s.TableID == tableID && s.Status == models.SeatingActive {
			n++
		}
	}
	return n, nil
}

func (r memorySeatings) IsSeatTaken(_ context.Context, _ SQLExecutor, tableID string, seatNumber int) (bool, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, s := range r.m.seatings {
		if s.TableID == tableID && s.Status == models.SeatingActive && s.SeatNumber != nil && *s.SeatNumber == seatNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r memorySeatings) ListActiveByTable(_ context.Context, tableID string) ([]*models.Seating, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	seatings := make([]*models.Seating, 0)
	for _, s := range r.m.seatings {
		if s.TableID == tableID && s.Status == models.SeatingActive {
			seatings = append(seatings, copySeating(s))
		}
	}
	sort.Slice(seatings, func(i, j int) bool {
		a, b := seatings[i], seatings[j]
		switch {
		case a.SeatNumber != nil && b.SeatNumber != nil && *a.SeatNumber != *b.SeatNumber:
			return *a.SeatNumber < *b.SeatNumber
		case a.SeatNumber != nil && b.SeatNumber == nil:
			return true
		case a.SeatNumber == nil && b.SeatNumber != nil:
			return false
		}
		return a.SeatedAt.Before(b.SeatedAt)
	})
	return seatings, nil
}

func (r memorySeatings) CountActiveByShop(_ context.Context, shopID string) (map[string]int, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	counts := make(map[string]int)
	for _, s := range r.m.seatings {
		if s.ShopID == shopID && s.Status == models.SeatingActive {
			counts[s.TableID]++
		}
	}
	return counts, nil
}

func (r memorySeatings) Release(_ context.Context, _ SQLExecutor, seatingID, playerID string, leftAt time.Time) (*models.Seating, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.seatings[seatingID]
	if !ok || s.Status != models.SeatingActive || (playerID != "" && s.PlayerID != playerID) {
		return nil, ErrSeatingNotFound
	}
	at := leftAt.UTC()
	s.Status = models.SeatingLeft
	s.LeftAt = &at
	return copySeating(s), nil
}

func (r memorySeatings) ReleaseByTable(_ context.Context, _ SQLExecutor, tableID string, leftAt time.Time) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	at := leftAt.UTC()
	n := 0
	for _, s := range r.m.seatings {
		if s.TableID == tableID && s.Status == models.SeatingActive {
			left := at
			s.Status = models.SeatingLeft
			s.LeftAt = &left
			n++
		}
	}
	return n, nil
}

func copySeating(s *models.Seating) *models.Seating {
	c := *s
	if s.SeatNumber != nil {
		n := *s.SeatNumber
		c.SeatNumber = &n
	}
	if s.LeftAt != nil {
		at := *s.LeftAt
		c.LeftAt = &at
	}
	c.Table, c.Shop, c.Player = nil, nil, nil
	return &c
}

// --- tournaments ---

type memoryTournaments struct{ m *MemoryStore }

func (r memoryTournaments) Create(_ context.Context, t *models.Tournament) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.shops[t.ShopID]; !ok {
		return ErrTournamentInvalidShop
	}
	stamp(&t.CreatedAt)
	t.UpdatedAt = t.CreatedAt
	r.m.tournaments[t.ID] = t.Clone()
	return nil
}

func (r memoryTournaments) GetByID(_ context.Context, _ SQLExecutor, id string) (*models.Tournament, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	t, ok := r.m.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	return t.Clone(), nil
}

func (r memoryTournaments) GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r memoryTournaments) List(_ context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	tournaments := make([]*models.Tournament, 0)
	for _, t := range r.m.tournaments {
		if filter.ShopID != nil && t.ShopID != *filter.ShopID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
			continue
		}
		tournaments = append(tournaments, t.Clone())
	}
	sort.Slice(tournaments, func(i, j int) bool {
		return tournaments[i].CreatedAt.After(tournaments[j].CreatedAt)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(tournaments) {
			return []*models.Tournament{}, nil
		}
		tournaments = tournaments[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(tournaments) {
		tournaments = tournaments[:filter.Limit]
	}
	return tournaments, nil
}

func (r memoryTournaments) Update(_ context.Context, _ SQLExecutor, t *models.Tournament) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	existing, ok := r.m.tournaments[t.ID]
	if !ok {
		return ErrTournamentNotFound
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	r.m.tournaments[t.ID] = t.Clone()
	return nil
}

func containsStatus(statuses []models.TournamentStatus, s models.TournamentStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}
