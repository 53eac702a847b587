package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	DB     *pgxpool.Pool
	Tokens *Tokens
}

func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	if email == "" || len(password) < 8 {
		return nil, errors.New("email required and password must be at least 8 chars")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := User{ID: uuid.NewString(), Email: email, CreatedAt: time.Now().UTC()}
	_, err = s.DB.Exec(ctx, `
		INSERT INTO users(id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)`, u.ID, u.Email, string(hash), u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 unique_violation pada email
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	var id, hash string
	err := s.DB.QueryRow(ctx, `SELECT id, password_hash FROM users WHERE email = $1`, email).
		Scan(&id, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return s.Tokens.Mint(id, email)
}
