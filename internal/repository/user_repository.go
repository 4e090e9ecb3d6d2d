package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventdesk/event-ticketing/internal/domain"
)

// UserFilter narrows user listings. Empty fields are ignored.
type UserFilter struct {
	Role      domain.Role
	CompanyID string
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetOwnerByCompanyID(ctx context.Context, companyID string) (*domain.User, error)
	UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetResetToken(ctx context.Context, id, token string, expiry time.Time) error
	ResetPassword(ctx context.Context, id, passwordHash string) error
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, COALESCE(company, ''), COALESCE(company_id, ''),
        status, reset_token, reset_token_expiry, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, company, company_id, status)
        VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Company,
		user.CompanyID,
		user.Status,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapPgError(err))
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *userRepository) GetOwnerByCompanyID(ctx context.Context, companyID string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE role=$1 AND company_id=$2 LIMIT 1`,
		domain.RoleEventOwner, companyID)
}

func (r *userRepository) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error {
	return r.exec(ctx, `UPDATE users SET status=$1, updated_at=NOW() WHERE id=$2`, id, status, id)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash=$1, updated_at=NOW() WHERE id=$2`, id, passwordHash, id)
}

func (r *userRepository) SetResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	return r.exec(ctx, `
        UPDATE users SET reset_token=$1, reset_token_expiry=$2, updated_at=NOW()
        WHERE id=$3`, id, token, expiry.UnixMilli(), id)
}

func (r *userRepository) ResetPassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, `
        UPDATE users SET password_hash=$1, reset_token=NULL, reset_token_expiry=NULL, updated_at=NOW()
        WHERE id=$2`, id, passwordHash, id)
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ($1 = '' OR role = $1) AND ($2 = '' OR company_id = $2)
        ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, string(filter.Role), filter.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err)
	}
	return user, nil
}

func (r *userRepository) exec(ctx context.Context, query, id string, args ...any) error {
	if !validID(id) {
		return ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user        domain.User
		resetExpiry *int64
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Company,
		&user.CompanyID,
		&user.Status,
		&user.ResetToken,
		&resetExpiry,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if resetExpiry != nil {
		expiry := time.UnixMilli(*resetExpiry).UTC()
		user.ResetTokenExpiry = &expiry
	}
	return &user, nil
}
