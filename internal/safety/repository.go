package safety

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/richxcame/seatshare/pkg/database"
)

const alertColumns = `
	id, raised_by, role, ride_id, location, message, status, resolved_by, resolved_at, created_at`

func scanAlert(row pgx.Row) (*EmergencyAlert, error) {
	a := &EmergencyAlert{}
	err := row.Scan(
		&a.ID, &a.RaisedBy, &a.Role, &a.RideID, &a.Location, &a.Message,
		&a.Status, &a.ResolvedBy, &a.ResolvedAt, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Repository handles SOS alert data access
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new safety repository
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// CreateAlert stores a new active alert
func (r *Repository) CreateAlert(ctx context.Context, a *EmergencyAlert) error {
	query := `
		INSERT INTO sos_alerts (id, raised_by, role, ride_id, location, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		a.ID, a.RaisedBy, string(a.Role), a.RideID, a.Location, a.Message, string(a.Status),
	).Scan(&a.CreatedAt)

	switch {
	case database.IsForeignKeyViolation(err):
		return ErrUnknownRide
	case err != nil:
		return fmt.Errorf("failed to create sos alert: %w", err)
	}
	return nil
}

// GetAlert returns an alert by ID
func (r *Repository) GetAlert(ctx context.Context, id uuid.UUID) (*EmergencyAlert, error) {
	a, err := scanAlert(r.db.QueryRow(ctx, `SELECT`+alertColumns+` FROM sos_alerts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAlertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sos alert: %w", err)
	}
	return a, nil
}

// ListActive returns unresolved alerts, newest first
func (r *Repository) ListActive(ctx context.Context, limit, offset int) ([]*EmergencyAlert, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sos_alerts WHERE status = 'active'`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sos alerts: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT`+alertColumns+`
		FROM sos_alerts
		WHERE status = 'active'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sos alerts: %w", err)
	}
	defer rows.Close()

	alerts := []*EmergencyAlert{}
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan sos alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, total, rows.Err()
}

// Resolve marks an active alert resolved. It returns (nil, nil) when the alert
// is missing or already resolved.
func (r *Repository) Resolve(ctx context.Context, id, resolvedBy uuid.UUID) (*EmergencyAlert, error) {
	a, err := scanAlert(r.db.QueryRow(ctx, `
		UPDATE sos_alerts
		SET status = 'resolved', resolved_by = $2, resolved_at = NOW()
		WHERE id = $1 AND status = 'active'
		RETURNING`+alertColumns, id, resolvedBy))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sos alert: %w", err)
	}
	return a, nil
}
