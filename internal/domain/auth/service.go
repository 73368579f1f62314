package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	Users    UserStore
	Secret   string
	TokenTTL time.Duration
}

func NewService(users UserStore, secret string, ttl time.Duration) *Service {
	return &Service{Users: users, Secret: secret, TokenTTL: ttl}
}

// Login checks the password and issues a signed token. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, User, error) {
	user, err := s.Users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrUserNotFound) {
		return "", User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", User{}, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return "", User{}, ErrInvalidCredentials
	}
	if !ValidRole(user.Role) {
		return "", User{}, ErrInvalidCredentials
	}
	token, err := GenerateToken(s.Secret, Claims{UserID: user.ID, Username: user.Username, Role: user.Role}, s.TokenTTL)
	if err != nil {
		return "", User{}, err
	}
	return token, user, nil
}
