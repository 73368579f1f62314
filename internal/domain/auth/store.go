package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`
}

type UserStore interface {
	FindByUsername(ctx context.Context, username string) (User, error)
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindByUsername(ctx context.Context, username string) (User, error) {
	var out User
	err := s.DB.QueryRow(ctx, `
    SELECT id, username, name, email, role, password_hash
    FROM users
    WHERE username = $1
  `, username).Scan(&out.ID, &out.Username, &out.Name, &out.Email, &out.Role, &out.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return out, err
}

// MemoryStore serves users from process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryStore(users ...User) *MemoryStore {
	s := &MemoryStore{users: make(map[string]User, len(users))}
	for _, user := range users {
		s.users[user.Username] = user
	}
	return s
}

func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}
