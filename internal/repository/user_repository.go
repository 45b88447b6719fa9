package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ST1000-S/iTechies/internal/domain"
)

// ErrDuplicateEmail is returned when an insert trips the unique email
// constraint. The constraint is the authority on uniqueness; callers
// must not pre-check with a read.
var ErrDuplicateEmail = errors.New("email already registered")

const uniqueViolation = "23505"

// ProviderFilter captures provider directory search parameters.
type ProviderFilter struct {
	SearchTerm *string
	Limit      int
	Offset     int
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListProviders(ctx context.Context, filter ProviderFilter) ([]domain.User, error)
	AddReview(ctx context.Context, review *domain.Review) error
	ListReviews(ctx context.Context, providerID string) ([]domain.Review, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, skills, location, availability)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Skills,
		user.Location,
		user.Availability,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, role, skills, location, availability, created_at, updated_at
        FROM users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, name, email, password_hash, role, skills, location, availability, created_at, updated_at
        FROM users WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Skills,
		&user.Location,
		&user.Availability,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListProviders(ctx context.Context, filter ProviderFilter) ([]domain.User, error) {
	query := `
        SELECT id, name, email, password_hash, role, skills, location, availability, created_at, updated_at
        FROM users WHERE role=$1`
	args := []any{domain.RoleProvider}

	if filter.SearchTerm != nil && *filter.SearchTerm != "" {
		query += ` AND (name ILIKE $2 OR location ILIKE $2 OR array_to_string(skills, ' ') ILIKE $2)`
		args = append(args, "%"+*filter.SearchTerm+"%")
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ` + strconv.Itoa(filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	providers := []domain.User{}
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.Skills,
			&user.Location,
			&user.Availability,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		providers = append(providers, user)
	}
	return providers, rows.Err()
}

func (r *userRepository) AddReview(ctx context.Context, review *domain.Review) error {
	const query = `
        INSERT INTO reviews (provider_id, author_id, rating, comment)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		review.ProviderID,
		review.AuthorID,
		review.Rating,
		review.Comment,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return pgx.ErrNoRows
		}
		return err
	}
	return nil
}

func (r *userRepository) ListReviews(ctx context.Context, providerID string) ([]domain.Review, error) {
	const query = `
        SELECT id, provider_id, author_id, rating, comment, created_at
        FROM reviews WHERE provider_id=$1
        ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(
			&review.ID,
			&review.ProviderID,
			&review.AuthorID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}
