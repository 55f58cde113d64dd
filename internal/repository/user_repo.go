package repository

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"literacylead/internal/database"
	"literacylead/internal/models"
)

// UserRepository handles database operations for users and sessions.
type UserRepository struct {
	db      *database.DB
	builder sq.StatementBuilderType
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

// UpsertOAuthUser finds a user by OAuth subject, creating or refreshing the
// row from the provider's profile claims.
func (r *UserRepository) UpsertOAuthUser(subject, email, name, picture string) (*models.User, error) {
	existing, err := r.GetUserBySubject(subject)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		query, args, err := r.builder.
			Update("users").
			Set("email", email).
			Set("name", name).
			Set("picture", picture).
			Set("updated_at", time.Now()).
			Where(sq.Eq{"id": existing.ID}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build user update: %w", err)
		}
		if _, err := r.db.Exec(query, args...); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		existing.Email = email
		existing.Name = name
		existing.Picture = picture
		return existing, nil
	}

	query, args, err := r.builder.
		Insert("users").
		Columns("subject", "email", "name", "picture").
		Values(subject, email, name, picture).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user insert: %w", err)
	}
	id, err := r.db.ExecReturningID(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{
		ID:        id,
		Subject:   subject,
		Email:     email,
		Name:      name,
		Picture:   picture,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// GetUserBySubject retrieves a user by OAuth subject, nil when absent.
func (r *UserRepository) GetUserBySubject(subject string) (*models.User, error) {
	return r.getUser(sq.Eq{"subject": subject})
}

// GetUserByID retrieves a user by primary key, nil when absent.
func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	return r.getUser(sq.Eq{"id": id})
}

func (r *UserRepository) getUser(where sq.Eq) (*models.User, error) {
	query, args, err := r.builder.
		Select("id", "subject", "email", "name", "picture", "created_at", "updated_at").
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user query: %w", err)
	}

	user := &models.User{}
	err = r.db.QueryRow(query, args...).Scan(
		&user.ID,
		&user.Subject,
		&user.Email,
		&user.Name,
		&user.Picture,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// CreateSession creates a new session row for a user.
func (r *UserRepository) CreateSession(sessionID string, userID int64, expiresAt time.Time) (*models.Session, error) {
	query, args, err := r.builder.
		Insert("sessions").
		Columns("id", "user_id", "expires_at").
		Values(sessionID, userID, expiresAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build session insert: %w", err)
	}
	if _, err := r.db.Exec(query, args...); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &models.Session{
		ID:        sessionID,
		UserID:    userID,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}, nil
}

// GetSession retrieves a session by id, nil when absent.
func (r *UserRepository) GetSession(sessionID string) (*models.Session, error) {
	query, args, err := r.builder.
		Select("id", "user_id", "created_at", "expires_at").
		From("sessions").
		Where(sq.Eq{"id": sessionID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build session query: %w", err)
	}

	session := &models.Session{}
	err = r.db.QueryRow(query, args...).Scan(
		&session.ID,
		&session.UserID,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// DeleteSession removes one session (logout).
func (r *UserRepository) DeleteSession(sessionID string) error {
	query, args, err := r.builder.Delete("sessions").Where(sq.Eq{"id": sessionID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build session delete: %w", err)
	}
	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes every session past its expiry.
func (r *UserRepository) DeleteExpiredSessions() error {
	query, args, err := r.builder.
		Delete("sessions").
		Where(sq.Lt{"expires_at": time.Now()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build expired session delete: %w", err)
	}
	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}
