package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/pokernow/models"
)

var ErrShopNotFound = errors.New("shop not found")

type ShopRepository interface {
	Create(ctx context.Context, shop *models.Shop) error
	GetByID(ctx context.Context, id string) (*models.Shop, error)
	List(ctx context.Context) ([]*models.Shop, error)
}

type postgresShopRepository struct {
	db *sql.DB
}

func NewPostgresShopRepository(db *sql.DB) ShopRepository {
	return &postgresShopRepository{db: db}
}

func (r *postgresShopRepository) Create(ctx context.Context, shop *models.Shop) error {
	query := `
		INSERT INTO shops (id, name, address, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, shop.ID, shop.Name, shop.Address, shop.ImageURL).
		Scan(&shop.CreatedAt, &shop.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create shop: %w", err)
	}
	return nil
}

func (r *postgresShopRepository) GetByID(ctx context.Context, id string) (*models.Shop, error) {
	query := `SELECT id, name, address, image_url, created_at, updated_at FROM shops WHERE id = $1`
	shop, err := scanShop(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("failed to get shop %s: %w", id, err)
	}
	return shop, nil
}

func (r *postgresShopRepository) List(ctx context.Context) ([]*models.Shop, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, address, image_url, created_at, updated_at FROM shops ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	defer rows.Close()

	shops := make([]*models.Shop, 0)
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shop row: %w", err)
		}
		shops = append(shops, shop)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shop rows: %w", err)
	}
	return shops, nil
}

func scanShop(row rowScanner) (*models.Shop, error) {
	var (
		shop  models.Shop
		image sql.NullString
	)
	if err := row.Scan(&shop.ID, &shop.Name, &shop.Address, &image, &shop.CreatedAt, &shop.UpdatedAt); err != nil {
		return nil, err
	}
	if image.Valid {
		shop.ImageURL = &image.String
	}
	return &shop, nil
}
