package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/pokernow/models"
)

var (
	ErrTableNotFound    = errors.New("table not found")
	ErrTableInvalidShop = errors.New("invalid shop reference")
	ErrTableNameExists  = errors.New("table name already used in this shop")
)

type TableRepository interface {
	Create(ctx context.Context, table *models.Table) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Table, error)
	// GetForUpdate row-locks the table when exec is a transaction, serialising
	// every check-in against it.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Table, error)
	ListByShop(ctx context.Context, shopID string) ([]*models.Table, error)
	Update(ctx context.Context, exec SQLExecutor, table *models.Table) error
	UpdateQRImageKey(ctx context.Context, id string, key *string) error
}

type postgresTableRepository struct {
	db *sql.DB
}

func NewPostgresTableRepository(db *sql.DB) TableRepository {
	return &postgresTableRepository{db: db}
}

func (r *postgresTableRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tableColumns = `id, shop_id, name, qr_code, qr_image_key, max_seats, is_active, created_at`

func (r *postgresTableRepository) Create(ctx context.Context, table *models.Table) error {
	query := `
		INSERT INTO poker_tables (id, shop_id, name, qr_code, qr_image_key, max_seats, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		table.ID, table.ShopID, table.Name, table.QRCode, table.QRImageKey, table.MaxSeats, table.IsActive,
	).Scan(&table.CreatedAt)
	return handleTableError(err)
}

func (r *postgresTableRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM poker_tables WHERE id = $1`
	return r.getOne(ctx, r.getExecutor(exec), query, id)
}

func (r *postgresTableRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM poker_tables WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, r.getExecutor(exec), query, id)
}

func (r *postgresTableRepository) getOne(ctx context.Context, executor SQLExecutor, query, id string) (*models.Table, error) {
	table, err := scanTable(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to get table %s: %w", id, err)
	}
	return table, nil
}

func (r *postgresTableRepository) ListByShop(ctx context.Context, shopID string) ([]*models.Table, error) {
	query := `SELECT ` + tableColumns + ` FROM poker_tables WHERE shop_id = $1 ORDER BY name ASC, created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables for shop %s: %w", shopID, err)
	}
	defer rows.Close()

	tables := make([]*models.Table, 0)
	for rows.Next() {
		table, err := scanTable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table row: %w", err)
		}
		tables = append(tables, table)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table rows: %w", err)
	}
	return tables, nil
}

func (r *postgresTableRepository) Update(ctx context.Context, exec SQLExecutor, table *models.Table) error {
	query := `UPDATE poker_tables SET name = $1, max_seats = $2, is_active = $3 WHERE id = $4`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, table.Name, table.MaxSeats, table.IsActive, table.ID)
	if err != nil {
		return handleTableError(err)
	}
	return checkAffectedRows(result, ErrTableNotFound)
}

func (r *postgresTableRepository) UpdateQRImageKey(ctx context.Context, id string, key *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE poker_tables SET qr_image_key = $1 WHERE id = $2`, key, id)
	if err != nil {
		return fmt.Errorf("failed to update qr image key for table %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTableNotFound)
}

func scanTable(row rowScanner) (*models.Table, error) {
	var (
		table models.Table
		key   sql.NullString
	)
	err := row.Scan(&table.ID, &table.ShopID, &table.Name, &table.QRCode, &key,
		&table.MaxSeats, &table.IsActive, &table.CreatedAt)
	if err != nil {
		return nil, err
	}
	if key.Valid {
		table.QRImageKey = &key.String
	}
	return &table, nil
}

func handleTableError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint, ok := pqErrorCode(err); ok {
		switch {
		case code == foreignKeyViolation:
			return ErrTableInvalidShop
		case code == uniqueViolation && constraint == "poker_tables_shop_id_name_key":
			return ErrTableNameExists
		}
	}
	return fmt.Errorf("table query failed: %w", err)
}
