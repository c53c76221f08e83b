package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/pokernow/events"
	"github.com/Dosada05/pokernow/hub"
	"github.com/Dosada05/pokernow/lock"
	"github.com/Dosada05/pokernow/models"
	"github.com/Dosada05/pokernow/repositories"
	"github.com/google/uuid"
)

type CheckInInput struct {
	ShopID     string `json:"shopId" validate:"required"`
	TableID    string `json:"tableId" validate:"required"`
	SeatNumber *int   `json:"seatNumber,omitempty" validate:"omitempty,min=1,max=10"`
}

// OccupancyUpdate is pushed to the shop room whenever a table's head count changes.
type OccupancyUpdate struct {
	TableID        string `json:"tableId"`
	CurrentPlayers int    `json:"currentPlayers"`
	MaxSeats       int    `json:"maxSeats"`
}

type SeatingService interface {
	// CheckIn seats the session's player at a table.
	CheckIn(ctx context.Context, session models.Session, input CheckInInput) (*models.Seating, error)
	// CheckOut ends the session's own active seating.
	CheckOut(ctx context.Context, session models.Session, seatingID string) (*models.Seating, error)
	// ForceCheckOut ends any active seating. Admin only.
	ForceCheckOut(ctx context.Context, session models.Session, seatingID string) (*models.Seating, error)
	// EvacuateTable checks out every active seating at a table. Admin only.
	EvacuateTable(ctx context.Context, session models.Session, shopID, tableID string) (int, error)
	MySeating(ctx context.Context, session models.Session) (*models.Seating, error)
	TableSeatings(ctx context.Context, shopID, tableID string) ([]*models.Seating, error)
}

type seatingService struct {
	seatingRepo repositories.SeatingRepository
	tableRepo   repositories.TableRepository
	shopRepo    repositories.ShopRepository
	playerRepo  repositories.PlayerRepository
	tx          repositories.Transactor
	locker      lock.Locker
	broadcaster Broadcaster
	publisher   events.Publisher
	logger      *slog.Logger
	now         func() time.Time
}

func NewSeatingService(
	seatingRepo repositories.SeatingRepository,
	tableRepo repositories.TableRepository,
	shopRepo repositories.ShopRepository,
	playerRepo repositories.PlayerRepository,
	tx repositories.Transactor,
	locker lock.Locker,
	broadcaster Broadcaster,
	publisher events.Publisher,
	logger *slog.Logger,
) SeatingService {
	return &seatingService{
		seatingRepo: seatingRepo,
		tableRepo:   tableRepo,
		shopRepo:    shopRepo,
		playerRepo:  playerRepo,
		tx:          tx,
		locker:      locker,
		broadcaster: broadcaster,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *seatingService) CheckIn(ctx context.Context, session models.Session, input CheckInInput) (*models.Seating, error) {
	playerID := session.PlayerID
	if playerID == "" {
		return nil, ErrAuthenticationFailed
	}
	if input.TableID == "" || input.ShopID == "" {
		return nil, fmt.Errorf("%w: shopId and tableId are required", ErrValidationFailed)
	}

	lockCtx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()
	unlock, err := s.locker.Lock(lockCtx, lock.Key(EntityPlayer, playerID), lock.Key(EntityTable, input.TableID))
	if err != nil {
		return nil, fmt.Errorf("check-in of player %s: %w", playerID, err)
	}
	defer unlock()

	var (
		seating *models.Seating
		table   *models.Table
		count   int
	)
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.seatingRepo.LockPlayer(ctx, exec, playerID); err != nil {
			return err
		}

		active, err := s.seatingRepo.GetActiveByPlayer(ctx, exec, playerID)
		switch {
		case err == nil:
			return entityErrf(ErrAlreadySeated, EntityPlayer, playerID, "seated at table %s", active.TableID)
		case !errors.Is(err, repositories.ErrSeatingNotFound):
			return err
		}

		table, err = s.tableRepo.GetForUpdate(ctx, exec, input.TableID)
		if err != nil {
			if errors.Is(err, repositories.ErrTableNotFound) {
				return entityErrf(ErrTableUnavailable, EntityTable, input.TableID, "table does not exist")
			}
			return err
		}
		if table.ShopID != input.ShopID {
			return entityErrf(ErrTableUnavailable, EntityTable, table.ID, "table belongs to another shop")
		}
		if !table.IsActive {
			return entityErrf(ErrTableUnavailable, EntityTable, table.ID, "table is not active")
		}

		count, err = s.seatingRepo.CountActiveByTable(ctx, exec, table.ID)
		if err != nil {
			return err
		}
		if count >= table.MaxSeats {
			return entityErrf(ErrTableFull, EntityTable, table.ID, "%d of %d seats taken", count, table.MaxSeats)
		}

		if input.SeatNumber != nil {
			seat := *input.SeatNumber
			if seat < 1 || seat > table.MaxSeats {
				return fmt.Errorf("%w: seat number must be between 1 and %d", ErrValidationFailed, table.MaxSeats)
			}
			taken, err := s.seatingRepo.IsSeatTaken(ctx, exec, table.ID, seat)
			if err != nil {
				return err
			}
			if taken {
				return entityErrf(ErrSeatTaken, EntityTable, table.ID, "seat %d", seat)
			}
		}

		seating = &models.Seating{
			ID:         uuid.NewString(),
			PlayerID:   playerID,
			ShopID:     table.ShopID,
			TableID:    table.ID,
			SeatNumber: input.SeatNumber,
			Status:     models.SeatingActive,
			SeatedAt:   s.now().UTC(),
		}
		return s.seatingRepo.Create(ctx, exec, seating)
	})
	if err != nil {
		return nil, s.mapRepoErr(err, playerID, input.TableID)
	}

	s.logger.Info("player checked in",
		slog.String("seating_id", seating.ID),
		slog.String("player_id", playerID),
		slog.String("table_id", table.ID),
		slog.Int("current_players", count+1),
		slog.Int("max_seats", table.MaxSeats))
	s.notifyOccupancy(table, count+1)
	s.publish(ctx, events.New(events.SeatingCheckedIn, seating.ShopID, seating.ID, seating))

	table.CurrentPlayers = count + 1
	seating.Table = table
	return seating, nil
}

func (s *seatingService) CheckOut(ctx context.Context, session models.Session, seatingID string) (*models.Seating, error) {
	if session.PlayerID == "" {
		return nil, ErrAuthenticationFailed
	}
	return s.checkOut(ctx, seatingID, session.PlayerID)
}

func (s *seatingService) ForceCheckOut(ctx context.Context, session models.Session, seatingID string) (*models.Seating, error) {
	if !session.IsAdmin() {
		return nil, ErrForbiddenOperation
	}
	return s.checkOut(ctx, seatingID, "")
}

// checkOut is a single conditional update, so two concurrent check-outs of
// the same seating cannot both succeed.
func (s *seatingService) checkOut(ctx context.Context, seatingID, playerID string) (*models.Seating, error) {
	seating, err := s.seatingRepo.Release(ctx, nil, seatingID, playerID, s.now().UTC())
	if err != nil {
		if errors.Is(err, repositories.ErrSeatingNotFound) {
			return nil, entityErrf(ErrSeatingNotFound, EntitySeating, seatingID, "no active seating")
		}
		return nil, fmt.Errorf("check-out of seating %s: %w", seatingID, err)
	}

	s.logger.Info("player checked out",
		slog.String("seating_id", seating.ID),
		slog.String("player_id", seating.PlayerID),
		slog.String("table_id", seating.TableID),
		slog.Bool("forced", playerID == ""))

	if table, err := s.tableRepo.GetByID(ctx, nil, seating.TableID); err == nil {
		if count, err := s.seatingRepo.CountActiveByTable(ctx, nil, table.ID); err == nil {
			s.notifyOccupancy(table, count)
		}
	}
	s.publish(ctx, events.New(events.SeatingCheckedOut, seating.ShopID, seating.ID, seating))
	return seating, nil
}

func (s *seatingService) EvacuateTable(ctx context.Context, session models.Session, shopID, tableID string) (int, error) {
	if !session.IsAdmin() {
		return 0, ErrForbiddenOperation
	}

	lockCtx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()
	unlock, err := s.locker.Lock(lockCtx, lock.Key(EntityTable, tableID))
	if err != nil {
		return 0, fmt.Errorf("evacuate table %s: %w", tableID, err)
	}
	defer unlock()

	var (
		table *models.Table
		n     int
	)
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		table, err = s.tableRepo.GetForUpdate(ctx, exec, tableID)
		if err != nil {
			return err
		}
		if table.ShopID != shopID {
			return entityErr(ErrTableNotFound, EntityTable, tableID)
		}
		n, err = s.seatingRepo.ReleaseByTable(ctx, exec, tableID, s.now().UTC())
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrTableNotFound) {
			return 0, entityErr(ErrTableNotFound, EntityTable, tableID)
		}
		return 0, err
	}

	s.logger.Info("table evacuated", slog.String("table_id", tableID), slog.Int("released", n))
	s.notifyOccupancy(table, 0)
	s.publish(ctx, events.New(events.TableEvacuated, shopID, tableID, map[string]int{"released": n}))
	return n, nil
}

func (s *seatingService) MySeating(ctx context.Context, session models.Session) (*models.Seating, error) {
	if session.PlayerID == "" {
		return nil, ErrAuthenticationFailed
	}
	seating, err := s.seatingRepo.GetActiveByPlayer(ctx, nil, session.PlayerID)
	if err != nil {
		if errors.Is(err, repositories.ErrSeatingNotFound) {
			return nil, entityErrf(ErrSeatingNotFound, EntityPlayer, session.PlayerID, "player is not seated")
		}
		return nil, fmt.Errorf("failed to load seating: %w", err)
	}

	table, err := s.tableRepo.GetByID(ctx, nil, seating.TableID)
	if err != nil {
		return nil, fmt.Errorf("failed to load table %s: %w", seating.TableID, err)
	}
	if table.CurrentPlayers, err = s.seatingRepo.CountActiveByTable(ctx, nil, table.ID); err != nil {
		return nil, err
	}
	seating.Table = table

	if shop, err := s.shopRepo.GetByID(ctx, seating.ShopID); err == nil {
		seating.Shop = shop
	} else if !errors.Is(err, repositories.ErrShopNotFound) {
		return nil, fmt.Errorf("failed to load shop %s: %w", seating.ShopID, err)
	}
	return seating, nil
}

func (s *seatingService) TableSeatings(ctx context.Context, shopID, tableID string) ([]*models.Seating, error) {
	table, err := s.tableRepo.GetByID(ctx, nil, tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrTableNotFound) {
			return nil, entityErr(ErrTableNotFound, EntityTable, tableID)
		}
		return nil, err
	}
	if table.ShopID != shopID {
		return nil, entityErr(ErrTableNotFound, EntityTable, tableID)
	}

	seatings, err := s.seatingRepo.ListActiveByTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(seatings))
	for i, seating := range seatings {
		ids[i] = seating.PlayerID
	}
	players, err := s.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, seating := range seatings {
		if p, ok := players[seating.PlayerID]; ok {
			seating.Player = &models.Player{
				ID:             p.ID,
				PokerName:      p.DisplayName(),
				DisplaySetting: p.DisplaySetting,
			}
		}
	}
	return seatings, nil
}

func (s *seatingService) notifyOccupancy(table *models.Table, current int) {
	s.broadcaster.BroadcastToRoom(hub.ShopRoom(table.ShopID), hub.Message{
		Type: hub.TypeOccupancyUpdated,
		Payload: OccupancyUpdate{
			TableID:        table.ID,
			CurrentPlayers: current,
			MaxSeats:       table.MaxSeats,
		},
		RoomID: hub.ShopRoom(table.ShopID),
	})
}

func (s *seatingService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", slog.String("type", event.Type), slog.Any("error", err))
	}
}

// mapRepoErr translates constraint violations raised by the store itself,
// which only fire if a writer bypassed the locks.
func (s *seatingService) mapRepoErr(err error, playerID, tableID string) error {
	var entityError *EntityError
	switch {
	case errors.As(err, &entityError), errors.Is(err, ErrValidationFailed):
		return err
	case errors.Is(err, repositories.ErrSeatingPlayerActive):
		return entityErr(ErrAlreadySeated, EntityPlayer, playerID)
	case errors.Is(err, repositories.ErrSeatingSeatTaken):
		return entityErr(ErrSeatTaken, EntityTable, tableID)
	case errors.Is(err, repositories.ErrSeatNumberOutOfRange):
		return fmt.Errorf("%w: seat number out of range", ErrValidationFailed)
	case errors.Is(err, repositories.ErrSeatingInvalidRefs):
		return entityErr(ErrPlayerNotFound, EntityPlayer, playerID)
	}
	return fmt.Errorf("check-in of player %s: %w", playerID, err)
}
