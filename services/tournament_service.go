package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/pokernow/blinds"
	"github.com/Dosada05/pokernow/clock"
	"github.com/Dosada05/pokernow/events"
	"github.com/Dosada05/pokernow/hub"
	"github.com/Dosada05/pokernow/lock"
	"github.com/Dosada05/pokernow/models"
	"github.com/Dosada05/pokernow/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// lockWait bounds how long a request waits for a per-entity lock.
const lockWait = 5 * time.Second

// tickConcurrency caps how many tournaments are ticked in parallel.
const tickConcurrency = 8

// Broadcaster pushes live updates to websocket subscribers.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type CreateTournamentInput struct {
	Name          string           `json:"name" validate:"required,min=1,max=120"`
	Structure     blinds.Structure `json:"structure" validate:"required,min=1,dive"`
	EntryFee      *int             `json:"entryFee,omitempty" validate:"omitempty,gte=0"`
	StartingStack *int             `json:"startingStack,omitempty" validate:"omitempty,gt=0"`
}

type UpdateTournamentInput struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Structure     blinds.Structure `json:"structure,omitempty" validate:"omitempty,min=1,dive"`
	EntryFee      *int             `json:"entryFee,omitempty" validate:"omitempty,gte=0"`
	StartingStack *int             `json:"startingStack,omitempty" validate:"omitempty,gt=0"`
}

type TournamentService interface {
	Create(ctx context.Context, session models.Session, shopID string, input CreateTournamentInput) (*models.Tournament, error)
	Get(ctx context.Context, shopID, id string) (*models.Tournament, error)
	List(ctx context.Context, shopID string) ([]*models.Tournament, error)
	Update(ctx context.Context, session models.Session, shopID, id string, input UpdateTournamentInput) (*models.Tournament, error)
	Control(ctx context.Context, session models.Session, shopID, id string, action clock.Action) (*models.Tournament, error)
	// Tick applies one clock tick to a single tournament. It reports whether
	// the tournament changed.
	Tick(ctx context.Context, id string, at time.Time) (bool, error)
	// TickAll ticks every tournament whose clock is counting down.
	TickAll(ctx context.Context, at time.Time) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	shopRepo       repositories.ShopRepository
	tx             repositories.Transactor
	locker         lock.Locker
	broadcaster    Broadcaster
	publisher      events.Publisher
	logger         *slog.Logger
	now            func() time.Time
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	shopRepo repositories.ShopRepository,
	tx repositories.Transactor,
	locker lock.Locker,
	broadcaster Broadcaster,
	publisher events.Publisher,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		shopRepo:       shopRepo,
		tx:             tx,
		locker:         locker,
		broadcaster:    broadcaster,
		publisher:      publisher,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *tournamentService) Create(ctx context.Context, session models.Session, shopID string, input CreateTournamentInput) (*models.Tournament, error) {
	if !session.IsAdmin() {
		return nil, ErrForbiddenOperation
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if _, err := s.shopRepo.GetByID(ctx, shopID); err != nil {
		return nil, s.mapRepoErr(err, EntityShop, shopID)
	}

	t := &models.Tournament{
		ID:            uuid.NewString(),
		ShopID:        shopID,
		Name:          name,
		Structure:     input.Structure,
		EntryFee:      input.EntryFee,
		StartingStack: input.StartingStack,
	}
	if err := clock.Prime(t); err != nil {
		return nil, err
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, s.mapRepoErr(err, EntityShop, shopID)
	}

	s.logger.Info("tournament created",
		slog.String("tournament_id", t.ID),
		slog.String("shop_id", shopID),
		slog.Int("levels", len(t.Structure)))
	s.publish(ctx, events.New(events.TournamentCreated, shopID, t.ID, t.ClockState()))
	return t, nil
}

// Get loads a tournament of shopID. An empty shopID matches any shop.
func (s *tournamentService) Get(ctx context.Context, shopID, id string) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, s.mapRepoErr(err, EntityTournament, id)
	}
	if shopID != "" && t.ShopID != shopID {
		return nil, entityErr(ErrTournamentNotFound, EntityTournament, id)
	}
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, shopID string) ([]*models.Tournament, error) {
	if _, err := s.shopRepo.GetByID(ctx, shopID); err != nil {
		return nil, s.mapRepoErr(err, EntityShop, shopID)
	}
	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{ShopID: &shopID})
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

// Update edits tournament metadata. The structure can only be replaced before
// the clock starts, and replacing it re-primes the clock.
func (s *tournamentService) Update(ctx context.Context, session models.Session, shopID, id string, input UpdateTournamentInput) (*models.Tournament, error) {
	if !session.IsAdmin() {
		return nil, ErrForbiddenOperation
	}
	t, _, err := s.mutate(ctx, id, func(t *models.Tournament) (bool, error) {
		if t.ShopID != shopID {
			return false, entityErr(ErrTournamentNotFound, EntityTournament, id)
		}
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return false, fmt.Errorf("%w: name cannot be empty", ErrValidationFailed)
			}
			t.Name = name
		}
		if input.EntryFee != nil {
			t.EntryFee = input.EntryFee
		}
		if input.StartingStack != nil {
			t.StartingStack = input.StartingStack
		}
		if input.Structure != nil {
			if t.Status != models.StatusWaiting {
				return false, entityErrf(ErrInvalidState, EntityTournament, id,
					"structure can only change while waiting, status is %s", t.Status)
			}
			t.Structure = input.Structure
			if err := clock.Prime(t); err != nil {
				return false, err
			}
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.TournamentUpdated, t.ShopID, t.ID, t.ClockState()))
	return t, nil
}

func (s *tournamentService) Control(ctx context.Context, session models.Session, shopID, id string, action clock.Action) (*models.Tournament, error) {
	if !session.IsAdmin() {
		return nil, ErrForbiddenOperation
	}
	var from models.TournamentStatus
	t, changed, err := s.mutate(ctx, id, func(t *models.Tournament) (bool, error) {
		if t.ShopID != shopID {
			return false, entityErr(ErrTournamentNotFound, EntityTournament, id)
		}
		from = t.Status
		changed, err := clock.Apply(t, action, s.now())
		if err != nil {
			if errors.Is(err, clock.ErrInvalidTransition) {
				return false, entityErrf(ErrInvalidState, EntityTournament, id, "cannot %s while %s", action, t.Status)
			}
			if errors.Is(err, clock.ErrUnknownAction) {
				return false, fmt.Errorf("%w: %v", ErrValidationFailed, err)
			}
			return false, err
		}
		return changed, nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.logger.Info("tournament clock control",
			slog.String("tournament_id", id),
			slog.String("action", string(action)),
			slog.String("from", string(from)),
			slog.String("to", string(t.Status)),
			slog.Int("remaining_seconds", t.RemainingSeconds))
		s.publish(ctx, events.New(events.TournamentClockChanged, t.ShopID, t.ID, map[string]interface{}{
			"action": action,
			"clock":  t.ClockState(),
		}))
	}
	return t, nil
}

func (s *tournamentService) Tick(ctx context.Context, id string, at time.Time) (bool, error) {
	_, changed, err := s.mutate(ctx, id, func(t *models.Tournament) (bool, error) {
		return clock.Tick(t, at), nil
	})
	return changed, err
}

func (s *tournamentService) TickAll(ctx context.Context, at time.Time) error {
	ticking, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{
		Statuses: []models.TournamentStatus{models.StatusRunning, models.StatusBreak},
	})
	if err != nil {
		return fmt.Errorf("failed to list ticking tournaments: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tickConcurrency)
	for _, t := range ticking {
		if !clock.Ticking(t) {
			continue
		}
		id := t.ID
		g.Go(func() error {
			if _, err := s.Tick(gctx, id, at); err != nil {
				// One failing tournament must not stop the others.
				s.logger.Error("tournament tick failed", slog.String("tournament_id", id), slog.Any("error", err))
			}
			return nil
		})
	}
	return g.Wait()
}

// mutate runs fn on the latest copy of a tournament under the tournament
// lock and persists it when fn reports a change. Changed clocks are pushed
// to websocket subscribers.
func (s *tournamentService) mutate(ctx context.Context, id string, fn func(t *models.Tournament) (bool, error)) (*models.Tournament, bool, error) {
	lockCtx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()
	unlock, err := s.locker.Lock(lockCtx, lock.Key(EntityTournament, id))
	if err != nil {
		return nil, false, fmt.Errorf("tournament %s: %w", id, err)
	}
	defer unlock()

	var (
		result  *models.Tournament
		changed bool
	)
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetForUpdate(ctx, exec, id)
		if err != nil {
			return s.mapRepoErr(err, EntityTournament, id)
		}
		if changed, err = fn(t); err != nil {
			return err
		}
		if changed {
			if err := s.tournamentRepo.Update(ctx, exec, t); err != nil {
				return s.mapRepoErr(err, EntityTournament, id)
			}
		}
		result = t
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if changed {
		s.broadcaster.BroadcastToRoom(hub.TournamentRoom(id), hub.Message{
			Type:    hub.TypeClockUpdated,
			Payload: result.ClockState(),
			RoomID:  hub.TournamentRoom(id),
		})
	}
	return result, changed, nil
}

func (s *tournamentService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", slog.String("type", event.Type), slog.Any("error", err))
	}
}

func (s *tournamentService) mapRepoErr(err error, entity, id string) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return entityErr(ErrTournamentNotFound, EntityTournament, id)
	case errors.Is(err, repositories.ErrShopNotFound), errors.Is(err, repositories.ErrTournamentInvalidShop):
		return entityErr(ErrShopNotFound, EntityShop, id)
	}
	return fmt.Errorf("%s %s: %w", entity, id, err)
}
