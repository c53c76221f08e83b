package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/pokernow/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerEmailConflict = errors.New("player email conflict")
)

type PlayerRepository interface {
	Create(ctx context.Context, p *models.Player) error
	GetByID(ctx context.Context, id string) (*models.Player, error)
	GetByEmail(ctx context.Context, email string) (*models.Player, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.Player, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, poker_name, display_setting, auth_provider, COALESCE(email, ''), created_at, updated_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (id, poker_name, display_setting, auth_provider, email)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.PokerName, p.DisplaySetting, p.AuthProvider, p.Email,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok && code == uniqueViolation && constraint == "players_email_key" {
			return ErrPlayerEmailConflict
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	return r.getOne(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
}

func (r *postgresPlayerRepository) GetByEmail(ctx context.Context, email string) (*models.Player, error) {
	return r.getOne(ctx, `SELECT `+playerColumns+` FROM players WHERE email = $1`, email)
}

func (r *postgresPlayerRepository) getOne(ctx context.Context, query string, arg string) (*models.Player, error) {
	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Player, error) {
	players := make(map[string]*models.Player, len(ids))
	if len(ids) == 0 {
		return players, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id::text = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players[p.ID] = p
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player rows: %w", err)
	}
	return players, nil
}

func scanPlayer(row rowScanner) (*models.Player, error) {
	var p models.Player
	err := row.Scan(&p.ID, &p.PokerName, &p.DisplaySetting, &p.AuthProvider, &p.Email, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
