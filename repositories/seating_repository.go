package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/pokernow/models"
	"github.com/lib/pq"
)

var (
	ErrSeatingNotFound      = errors.New("seating not found")
	ErrSeatingPlayerActive  = errors.New("player already has an active seating")
	ErrSeatingSeatTaken     = errors.New("seat number already taken at this table")
	ErrSeatingInvalidRefs   = errors.New("seating references an unknown player or table")
	ErrSeatNumberOutOfRange = errors.New("seat number out of range")
	errSeatingConstraint    = errors.New("seating violates a database constraint")
)

type SeatingRepository interface {
	// LockPlayer serialises check-ins of one player for the rest of the
	// transaction held by exec.
	LockPlayer(ctx context.Context, exec SQLExecutor, playerID string) error
	Create(ctx context.Context, exec SQLExecutor, s *models.Seating) error
	GetActiveByPlayer(ctx context.Context, exec SQLExecutor, playerID string) (*models.Seating, error)
	CountActiveByTable(ctx context.Context, exec SQLExecutor, tableID string) (int, error)
	IsSeatTaken(ctx context.Context, exec SQLExecutor, tableID string, seatNumber int) (bool, error)
	ListActiveByTable(ctx context.Context, tableID string) ([]*models.Seating, error)
	// CountActiveByShop returns active seatings per table id.
	CountActiveByShop(ctx context.Context, shopID string) (map[string]int, error)
	// Release moves an active seating to left. When playerID is non-empty the
	// seating must also belong to that player. Returns ErrSeatingNotFound if
	// no active row matched.
	Release(ctx context.Context, exec SQLExecutor, seatingID, playerID string, leftAt time.Time) (*models.Seating, error)
	ReleaseByTable(ctx context.Context, exec SQLExecutor, tableID string, leftAt time.Time) (int, error)
}

type postgresSeatingRepository struct {
	db *sql.DB
}

func NewPostgresSeatingRepository(db *sql.DB) SeatingRepository {
	return &postgresSeatingRepository{db: db}
}

func (r *postgresSeatingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const seatingColumns = `id, player_id, shop_id, table_id, seat_number, status, seated_at, left_at`

func (r *postgresSeatingRepository) LockPlayer(ctx context.Context, exec SQLExecutor, playerID string) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "seating:"+playerID)
	if err != nil {
		return fmt.Errorf("failed to lock player %s: %w", playerID, err)
	}
	return nil
}

func (r *postgresSeatingRepository) Create(ctx context.Context, exec SQLExecutor, s *models.Seating) error {
	query := `
		INSERT INTO seatings (id, player_id, shop_id, table_id, seat_number, status, seated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		s.ID, s.PlayerID, s.ShopID, s.TableID, s.SeatNumber, s.Status, s.SeatedAt,
	)
	return handleSeatingError(err)
}

func (r *postgresSeatingRepository) GetActiveByPlayer(ctx context.Context, exec SQLExecutor, playerID string) (*models.Seating, error) {
	query := `SELECT ` + seatingColumns + ` FROM seatings WHERE player_id = $1 AND status = 'active'`
	s, err := scanSeating(r.getExecutor(exec).QueryRowContext(ctx, query, playerID))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrSeatingNotFound
		}
		return nil, fmt.Errorf("failed to get active seating for player %s: %w", playerID, err)
	}
	return s, nil
}

func (r *postgresSeatingRepository) CountActiveByTable(ctx context.Context, exec SQLExecutor, tableID string) (int, error) {
	var n int
	err := r.getExecutor(exec).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seatings WHERE table_id = $1 AND status = 'active'`, tableID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count seatings for table %s: %w", tableID, err)
	}
	return n, nil
}

func (r *postgresSeatingRepository) IsSeatTaken(ctx context.Context, exec SQLExecutor, tableID string, seatNumber int) (bool, error) {
	var taken bool
	err := r.getExecutor(exec).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM seatings WHERE table_id = $1 AND seat_number = $2 AND status = 'active')`,
		tableID, seatNumber,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check seat %d at table %s: %w", seatNumber, tableID, err)
	}
	return taken, nil
}

func (r *postgresSeatingRepository) ListActiveByTable(ctx context.Context, tableID string) ([]*models.Seating, error) {
	query := `SELECT ` + seatingColumns + ` FROM seatings
		WHERE table_id = $1 AND status = 'active'
		ORDER BY seat_number ASC NULLS LAST, seated_at ASC`
	rows, err := r.db.QueryContext(ctx, query, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seatings for table %s: %w", tableID, err)
	}
	defer rows.Close()

	seatings := make([]*models.Seating, 0)
	for rows.Next() {
		s, err := scanSeating(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan seating row: %w", err)
		}
		seatings = append(seatings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seating rows: %w", err)
	}
	return seatings, nil
}

func (r *postgresSeatingRepository) CountActiveByShop(ctx context.Context, shopID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT table_id, COUNT(*) FROM seatings
		WHERE shop_id = $1 AND status = 'active'
		GROUP BY table_id`, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to count seatings for shop %s: %w", shopID, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			tableID string
			n       int
		)
		if err := rows.Scan(&tableID, &n); err != nil {
			return nil, fmt.Errorf("failed to scan seating count: %w", err)
		}
		counts[tableID] = n
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seating counts: %w", err)
	}
	return counts, nil
}

func (r *postgresSeatingRepository) Release(ctx context.Context, exec SQLExecutor, seatingID, playerID string, leftAt time.Time) (*models.Seating, error) {
	query := `
		UPDATE seatings SET status = 'left', left_at = $1
		WHERE id = $2 AND status = 'active' AND ($3 = '' OR player_id::text = $3)
		RETURNING ` + seatingColumns

	s, err := scanSeating(r.getExecutor(exec).QueryRowContext(ctx, query, leftAt, seatingID, playerID))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrSeatingNotFound
		}
		return nil, fmt.Errorf("failed to release seating %s: %w", seatingID, err)
	}
	return s, nil
}

func (r *postgresSeatingRepository) ReleaseByTable(ctx context.Context, exec SQLExecutor, tableID string, leftAt time.Time) (int, error) {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE seatings SET status = 'left', left_at = $1 WHERE table_id = $2 AND status = 'active'`,
		leftAt, tableID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to release seatings for table %s: %w", tableID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(n), nil
}

func scanSeating(row rowScanner) (*models.Seating, error) {
	var (
		s      models.Seating
		seat   sql.NullInt64
		leftAt pq.NullTime
	)
	err := row.Scan(&s.ID, &s.PlayerID, &s.ShopID, &s.TableID, &seat, &s.Status, &s.SeatedAt, &leftAt)
	if err != nil {
		return nil, err
	}
	if seat.Valid {
		n := int(seat.Int64)
		s.SeatNumber = &n
	}
	if leftAt.Valid {
		at := leftAt.Time.UTC()
		s.LeftAt = &at
	}
	s.SeatedAt = s.SeatedAt.UTC()
	return &s, nil
}

func handleSeatingError(err error) error {
	if err == nil {
		return nil
	}
	code, constraint, ok := pqErrorCode(err)
	if !ok {
		return fmt.Errorf("seating query failed: %w", err)
	}
	switch code {
	case uniqueViolation:
		switch constraint {
		case "seatings_one_active_per_player":
			return ErrSeatingPlayerActive
		case "seatings_active_seat_number":
			return ErrSeatingSeatTaken
		}
	case foreignKeyViolation, invalidTextRepr:
		return ErrSeatingInvalidRefs
	case checkViolation:
		if constraint == "seatings_seat_number_check" {
			return ErrSeatNumberOutOfRange
		}
	}
	return fmt.Errorf("%w: %v", errSeatingConstraint, err)
}
