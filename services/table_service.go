package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/pokernow/events"
	"github.com/Dosada05/pokernow/lock"
	"github.com/Dosada05/pokernow/models"
	"github.com/Dosada05/pokernow/repositories"
	"github.com/Dosada05/pokernow/storage"
	"github.com/Dosada05/pokernow/utils"
	"github.com/google/uuid"
)

type CreateTableInput struct {
	Name     string `json:"name" validate:"required,min=1,max=60"`
	MaxSeats *int   `json:"maxSeats,omitempty" validate:"omitempty,min=1,max=10"`
}

type UpdateTableInput struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=60"`
	MaxSeats *int    `json:"maxSeats,omitempty" validate:"omitempty,min=1,max=10"`
	IsActive *bool   `json:"isActive,omitempty"`
}

type TableService interface {
	Create(ctx context.Context, session models.Session, shopID string, input CreateTableInput) (*models.Table, error)
	Update(ctx context.Context, session models.Session, shopID, tableID string, input UpdateTableInput) (*models.Table, error)
	List(ctx context.Context, shopID string) ([]*models.Table, error)
}

type tableService struct {
	tableRepo   repositories.TableRepository
	seatingRepo repositories.SeatingRepository
	shopRepo    repositories.ShopRepository
	tx          repositories.Transactor
	locker      lock.Locker
	uploader    storage.FileUploader
	publisher   events.Publisher
	logger      *slog.Logger
}

// NewTableService wires the table service. uploader may be nil, in which case
// tables keep their QR content but no rendered image.
func NewTableService(
	tableRepo repositories.TableRepository,
	seatingRepo repositories.SeatingRepository,
	shopRepo repositories.ShopRepository,
	tx repositories.Transactor,
	locker lock.Locker,
	uploader storage.FileUploader,
	publisher events.Publisher,
	logger *slog.Logger,
) TableService {
	return &tableService{
		tableRepo:   tableRepo,
		seatingRepo: seatingRepo,
		shopRepo:    shopRepo,
		tx:          tx,
		locker:      locker,
		uploader:    uploader,
		publisher:   publisher,
		logger:      logger,
	}
}

// TableQRContent is the payload encoded in a table's QR code.
func TableQRContent(shopID, tableID string) string {
	return fmt.Sprintf("pokernow://%s/table/%s", shopID, tableID)
}

func (s *tableService) Create(ctx context.Context, session models.Session, shopID string, input CreateTableInput) (*models.Table, error) {
	if !session.IsAdmin() {
		return nil, ErrForbiddenOperation
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	maxSeats := models.DefaultSeatsPerTable
	if input.MaxSeats != nil {
		maxSeats = *input.MaxSeats
	}
	if err := validateMaxSeats(maxSeats); err != nil {
		return nil, err
	}
	if _, err := s.shopRepo.GetByID(ctx, shopID); err != nil {
		if errors.Is(err, repositories.ErrShopNotFound) {
			return nil, entityErr(ErrShopNotFound, EntityShop, shopID)
		}
		return nil, err
	}

	id := uuid.NewString()
	table := &models.Table{
		ID:       id,
		ShopID:   shopID,
		Name:     name,
		QRCode:   TableQRContent(shopID, id),
		MaxSeats: maxSeats,
		IsActive: true,
	}
	if err := s.tableRepo.Create(ctx, table); err != nil {
		return nil, s.mapRepoErr(err, shopID, id)
	}

	if s.uploader != nil {
		if err := s.uploadQRImage(ctx, table); err != nil {
			// The table is usable without the image; it can be re-rendered later.
			s.logger.Warn("failed to upload table qr image", slog.String("table_id", id), slog.Any("error", err))
		}
	}

	s.logger.Info("table created", slog.String("table_id", id), slog.String("shop_id", shopID), slog.Int("max_seats", maxSeats))
	s.publish(ctx, events.New(events.TableCreated, shopID, id, table))
	return table, nil
}

func (s *tableService) uploadQRImage(ctx context.Context, table *models.Table) error {
	png, err := utils.GenerateQRCode(table.QRCode, utils.QRCodeSize)
	if err != nil {
		return err
	}
	key := storage.TableQRKey(table.ShopID, table.ID, table.Name)
	result, err := s.uploader.Upload(ctx, key, storage.ContentTypePNG, bytes.NewReader(png))
	if err != nil {
		return err
	}
	if err := s.tableRepo.UpdateQRImageKey(ctx, table.ID, &result.Key); err != nil {
		if delErr := s.uploader.Delete(ctx, result.Key); delErr != nil {
			s.logger.Warn("failed to remove orphaned qr image", slog.String("key", result.Key), slog.Any("error", delErr))
		}
		return err
	}
	table.QRImageKey = &result.Key
	url := result.Location
	table.QRImageURL = &url
	return nil
}

func (s *tableService) Update(ctx context.Context, session models.Session, shopID, tableID string, input UpdateTableInput) (*models.Table, error) {
	if !session.IsAdmin() {
		return nil, ErrForbiddenOperation
	}
	if input.MaxSeats != nil {
		if err := validateMaxSeats(*input.MaxSeats); err != nil {
			return nil, err
		}
	}

	lockCtx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()
	unlock, err := s.locker.Lock(lockCtx, lock.Key(EntityTable, tableID))
	if err != nil {
		return nil, fmt.Errorf("update table %s: %w", tableID, err)
	}
	defer unlock()

	var table *models.Table
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		table, err = s.tableRepo.GetForUpdate(ctx, exec, tableID)
		if err != nil {
			return err
		}
		if table.ShopID != shopID {
			return entityErr(ErrTableNotFound, EntityTable, tableID)
		}
		count, err := s.seatingRepo.CountActiveByTable(ctx, exec, tableID)
		if err != nil {
			return err
		}
		table.CurrentPlayers = count

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return fmt.Errorf("%w: name cannot be empty", ErrValidationFailed)
			}
			table.Name = name
		}
		if input.MaxSeats != nil {
			if *input.MaxSeats < count {
				return entityErrf(ErrTableFull, EntityTable, tableID,
					"%d players seated, cannot lower max seats to %d", count, *input.MaxSeats)
			}
			table.MaxSeats = *input.MaxSeats
		}
		if input.IsActive != nil {
			table.IsActive = *input.IsActive
		}
		return s.tableRepo.Update(ctx, exec, table)
	})
	if err != nil {
		return nil, s.mapRepoErr(err, shopID, tableID)
	}

	s.decorate(table)
	s.logger.Info("table updated", slog.String("table_id", tableID), slog.Int("max_seats", table.MaxSeats), slog.Bool("is_active", table.IsActive))
	s.publish(ctx, events.New(events.TableUpdated, shopID, tableID, table))
	return table, nil
}

func (s *tableService) List(ctx context.Context, shopID string) ([]*models.Table, error) {
	if _, err := s.shopRepo.GetByID(ctx, shopID); err != nil {
		if errors.Is(err, repositories.ErrShopNotFound) {
			return nil, entityErr(ErrShopNotFound, EntityShop, shopID)
		}
		return nil, err
	}
	tables, err := s.tableRepo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	counts, err := s.seatingRepo.CountActiveByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	for _, table := range tables {
		table.CurrentPlayers = counts[table.ID]
		s.decorate(table)
	}
	return tables, nil
}

func (s *tableService) decorate(table *models.Table) {
	if s.uploader == nil || table.QRImageKey == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*table.QRImageKey); url != "" {
		table.QRImageURL = &url
	}
}

func (s *tableService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", slog.String("type", event.Type), slog.Any("error", err))
	}
}

func (s *tableService) mapRepoErr(err error, shopID, tableID string) error {
	var entityError *EntityError
	switch {
	case errors.As(err, &entityError), errors.Is(err, ErrValidationFailed):
		return err
	case errors.Is(err, repositories.ErrTableNotFound):
		return entityErr(ErrTableNotFound, EntityTable, tableID)
	case errors.Is(err, repositories.ErrTableInvalidShop):
		return entityErr(ErrShopNotFound, EntityShop, shopID)
	case errors.Is(err, repositories.ErrTableNameExists):
		return entityErr(ErrTableNameTaken, EntityTable, tableID)
	}
	return fmt.Errorf("table %s: %w", tableID, err)
}

func validateMaxSeats(n int) error {
	if n < models.MinSeatsPerTable || n > models.MaxSeatsPerTable {
		return fmt.Errorf("%w: maxSeats must be between %d and %d", ErrValidationFailed, models.MinSeatsPerTable, models.MaxSeatsPerTable)
	}
	return nil
}
