package drivers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/richxcame/seatshare/pkg/database"
)

const driverColumns = `
	id, user_id, full_name, photograph_url, photograph_key, primary_phone, secondary_phone,
	address, aadhaar_number, driving_license_url, driving_license_key, vehicle_number,
	car_make, car_model, is_verified, is_banned, completed_rides, created_at, updated_at`

func scanDriver(row pgx.Row) (*Driver, error) {
	d := &Driver{}
	err := row.Scan(
		&d.ID, &d.UserID, &d.FullName, &d.PhotographURL, &d.PhotographKey, &d.PrimaryPhone, &d.SecondaryPhone,
		&d.Address, &d.AadhaarNumber, &d.DrivingLicenseURL, &d.DrivingLicenseKey, &d.VehicleNumber,
		&d.CarMake, &d.CarModel, &d.IsVerified, &d.IsBanned, &d.CompletedRides, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Repository handles driver profile data access
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new drivers repository
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// Create inserts a driver profile
func (r *Repository) Create(ctx context.Context, d *Driver) error {
	query := `
		INSERT INTO drivers (
			id, user_id, full_name, photograph_url, photograph_key, primary_phone, secondary_phone,
			address, aadhaar_number, driving_license_url, driving_license_key, vehicle_number,
			car_make, car_model
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		d.ID, d.UserID, d.FullName, d.PhotographURL, d.PhotographKey, d.PrimaryPhone, d.SecondaryPhone,
		d.Address, d.AadhaarNumber, d.DrivingLicenseURL, d.DrivingLicenseKey, d.VehicleNumber,
		d.CarMake, d.CarModel,
	).Scan(&d.CreatedAt, &d.UpdatedAt)

	switch {
	case database.IsUniqueViolation(err, "drivers_aadhaar_number_key"):
		return ErrAadhaarTaken
	case database.IsUniqueViolation(err, "drivers_user_id_key"):
		return ErrProfileExists
	case err != nil:
		return fmt.Errorf("failed to create driver: %w", err)
	}
	return nil
}

// GetByUserID returns the profile owned by a user
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Driver, error) {
	return r.getOne(ctx, `SELECT`+driverColumns+` FROM drivers WHERE user_id = $1`, userID)
}

// GetByID returns a profile by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Driver, error) {
	return r.getOne(ctx, `SELECT`+driverColumns+` FROM drivers WHERE id = $1`, id)
}

func (r *Repository) getOne(ctx context.Context, query string, arg uuid.UUID) (*Driver, error) {
	d, err := scanDriver(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDriverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}
	return d, nil
}

// Update saves the editable profile fields and document references
func (r *Repository) Update(ctx context.Context, d *Driver) error {
	query := `
		UPDATE drivers
		SET full_name = $2, primary_phone = $3, secondary_phone = $4, address = $5,
			vehicle_number = $6, car_make = $7, car_model = $8,
			photograph_url = $9, photograph_key = $10,
			driving_license_url = $11, driving_license_key = $12,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		d.ID, d.FullName, d.PrimaryPhone, d.SecondaryPhone, d.Address,
		d.VehicleNumber, d.CarMake, d.CarModel,
		d.PhotographURL, d.PhotographKey,
		d.DrivingLicenseURL, d.DrivingLicenseKey,
	).Scan(&d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDriverNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update driver: %w", err)
	}
	return nil
}

// List returns profiles in the given state, newest first
func (r *Repository) List(ctx context.Context, status StatusFilter, limit, offset int) ([]*Driver, int64, error) {
	var where string
	switch status {
	case StatusPending:
		where = "WHERE is_verified = FALSE AND is_banned = FALSE"
	case StatusVerified:
		where = "WHERE is_verified = TRUE AND is_banned = FALSE"
	case StatusBanned:
		where = "WHERE is_banned = TRUE"
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM drivers `+where).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count drivers: %w", err)
	}

	query := `SELECT` + driverColumns + ` FROM drivers ` + where + ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer rows.Close()

	drivers := []*Driver{}
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan driver: %w", err)
		}
		drivers = append(drivers, d)
	}
	return drivers, total, rows.Err()
}

// SetVerified marks a profile verified
func (r *Repository) SetVerified(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, `UPDATE drivers SET is_verified = TRUE, updated_at = NOW() WHERE id = $1`, id)
}

// SetBanned bans or unbans a driver profile
func (r *Repository) SetBanned(ctx context.Context, id uuid.UUID, banned bool) error {
	return r.execOne(ctx, `UPDATE drivers SET is_banned = $2, updated_at = NOW() WHERE id = $1`, id, banned)
}

// DeleteUnverified removes a profile that has not been verified yet
func (r *Repository) DeleteUnverified(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM drivers WHERE id = $1 AND is_verified = FALSE`, id)
	if err != nil {
		return fmt.Errorf("failed to delete driver: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyVerified
	}
	return nil
}

func (r *Repository) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update driver: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDriverNotFound
	}
	return nil
}
