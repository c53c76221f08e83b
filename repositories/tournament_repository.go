package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/pokernow/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound    = errors.New("tournament not found")
	ErrTournamentInvalidShop = errors.New("invalid shop reference")
)

type ListTournamentsFilter struct {
	ShopID   *string
	Statuses []models.TournamentStatus
	Limit    int
	Offset   int
}

type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error)
	// GetForUpdate row-locks the tournament when exec is a transaction.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error)
	Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, shop_id, name, status, current_level, position, remaining_seconds,
	structure, entry_fee, starting_stack, break_held, last_tick,
	created_at, started_at, updated_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			id, shop_id, name, status, current_level, position, remaining_seconds,
			structure, entry_fee, starting_stack, break_held, last_tick
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.ShopID, t.Name, t.Status, t.CurrentLevel, t.Position, t.RemainingSeconds,
		t.Structure, t.EntryFee, t.StartingStack, t.BreakHeld, t.LastTick,
	).Scan(&t.CreatedAt, &t.UpdatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.getOne(ctx, r.getExecutor(exec), query, id)
}

func (r *postgresTournamentRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id string) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, r.getExecutor(exec), query, id)
}

func (r *postgresTournamentRepository) getOne(ctx context.Context, executor SQLExecutor, query, id string) (*models.Tournament, error) {
	t, err := scanTournament(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]*models.Tournament, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.ShopID != nil {
		args = append(args, *filter.ShopID)
		conditions = append(conditions, fmt.Sprintf("shop_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		conditions = append(conditions, fmt.Sprintf("status::text = ANY($%d)", len(args)))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT` + tournamentColumns + ` FROM tournaments`)
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament rows: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1, status = $2, current_level = $3, position = $4,
			remaining_seconds = $5, structure = $6, entry_fee = $7, starting_stack = $8,
			break_held = $9, last_tick = $10, started_at = $11, updated_at = NOW()
		WHERE id = $12
		RETURNING updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		t.Name, t.Status, t.CurrentLevel, t.Position,
		t.RemainingSeconds, t.Structure, t.EntryFee, t.StartingStack,
		t.BreakHeld, t.LastTick, t.StartedAt, t.ID,
	).Scan(&t.UpdatedAt)
	if isNoRows(err) {
		return ErrTournamentNotFound
	}
	return r.handleTournamentError(err)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTournament(row rowScanner) (*models.Tournament, error) {
	var (
		t         models.Tournament
		startedAt sql.NullTime
		entryFee  sql.NullInt64
		stack     sql.NullInt64
	)
	err := row.Scan(
		&t.ID, &t.ShopID, &t.Name, &t.Status, &t.CurrentLevel, &t.Position, &t.RemainingSeconds,
		&t.Structure, &entryFee, &stack, &t.BreakHeld, &t.LastTick,
		&t.CreatedAt, &startedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if startedAt.Valid {
		at := startedAt.Time.UTC()
		t.StartedAt = &at
	}
	if entryFee.Valid {
		v := int(entryFee.Int64)
		t.EntryFee = &v
	}
	if stack.Valid {
		v := int(stack.Int64)
		t.StartingStack = &v
	}
	return &t, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if code, _, ok := pqErrorCode(err); ok {
		switch code {
		case foreignKeyViolation:
			return ErrTournamentInvalidShop
		case checkViolation:
			return fmt.Errorf("tournament violates a database check: %w", err)
		}
	}
	return fmt.Errorf("tournament query failed: %w", err)
}
