package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/richxcame/seatshare/pkg/database"
	"github.com/richxcame/seatshare/pkg/models"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrPhoneTaken     = errors.New("phone number already registered")
	ErrCannotBanAdmin = errors.New("administrators cannot be banned")
)

const userColumns = `id, phone, name, password_hash, role, is_banned, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Phone,
		&user.Name,
		&user.PasswordHash,
		&user.Role,
		&user.IsBanned,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Repository handles database operations for authentication
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new auth repository
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, phone, name, password_hash, role, is_banned)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.Phone,
		user.Name,
		user.PasswordHash,
		user.Role,
		user.IsBanned,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if database.IsUniqueViolation(err) {
		return ErrPhoneTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// UpsertAdmin creates the administrator account, or promotes and resets the account holding its phone
func (r *Repository) UpsertAdmin(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, phone, name, password_hash, role)
		VALUES ($1, $2, $3, $4, 'admin')
		ON CONFLICT (phone) DO UPDATE
		SET role = 'admin', name = EXCLUDED.name, password_hash = EXCLUDED.password_hash,
			is_banned = FALSE, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, user.ID, user.Phone, user.Name, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert admin: %w", err)
	}
	user.Role = models.RoleAdmin
	return nil
}

// GetUserByPhone retrieves a user by phone number
func (r *Repository) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, phone))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetPrincipal loads the caller's role together with the ban and verification
// state of the account and of its driver profile
func (r *Repository) GetPrincipal(ctx context.Context, id uuid.UUID) (*models.Principal, error) {
	query := `
		SELECT u.id, u.role, u.is_banned OR COALESCE(d.is_banned, FALSE), COALESCE(d.is_verified, FALSE)
		FROM users u
		LEFT JOIN drivers d ON d.user_id = u.id
		WHERE u.id = $1
	`

	p := &models.Principal{}
	err := r.db.QueryRow(ctx, query, id).Scan(&p.UserID, &p.Role, &p.Banned, &p.DriverVerified)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load principal: %w", err)
	}
	return p, nil
}

// ListUsers returns accounts matching filter, newest first
func (r *Repository) ListUsers(ctx context.Context, filter UserFilter, limit, offset int) ([]*models.User, int64, error) {
	where := []string{"TRUE"}
	var args []any
	if filter.Role != "" {
		args = append(args, filter.Role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Banned != nil {
		args = append(args, *filter.Banned)
		where = append(where, fmt.Sprintf("is_banned = $%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR phone ILIKE $%d)", len(args), len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

// SetBanned bans or unbans a non-admin account
func (r *Repository) SetBanned(ctx context.Context, id uuid.UUID, banned bool) error {
	query := `UPDATE users SET is_banned = $2, updated_at = NOW() WHERE id = $1 AND role <> 'admin'`

	tag, err := r.db.Exec(ctx, query, id, banned)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetUserByID(ctx, id); err != nil {
			return err
		}
		return ErrCannotBanAdmin
	}
	return nil
}
