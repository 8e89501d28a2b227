package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"isp_billing_panel/internal/domain/session"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// DefaultSessionTTL is the lifetime of an admin login.
const DefaultSessionTTL = 24 * time.Hour

// CredentialStore yields the single admin credential. Password may be a bcrypt hash.
type CredentialStore interface {
	AdminCredentials() (username, password string, err error)
}

// AuthService is the single-role session gate in front of every panel operation.
type AuthService struct {
	credentials CredentialStore
	sessions    session.Store
	ttl         time.Duration
	logger      *logrus.Entry
	now         func() time.Time
}

func NewAuthService(credentials CredentialStore, sessions session.Store, ttl time.Duration, logger *logrus.Entry) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{
		credentials: credentials,
		sessions:    sessions,
		ttl:         ttl,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *AuthService) TTL() time.Duration { return s.ttl }

// Login checks the credential and issues a fresh session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*session.Session, error) {
	wantUser, wantPass, err := s.credentials.AdminCredentials()
	if err != nil {
		return nil, fmt.Errorf("failed to load admin credentials: %w", err)
	}
	if !matchUsername(wantUser, username) || !matchPassword(wantPass, password) {
		s.logger.WithField("username", username).Warn("Login rejected")
		return nil, ErrInvalidCredentials
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}
	now := s.now()
	sess := &session.Session{
		Token:     token,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, persistenceError("save session", err)
	}
	s.logger.WithField("username", username).Info("Admin logged in")
	return sess, nil
}

// Authenticate resolves a cookie token to a live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, persistenceError("get session", err)
	}
	if sess.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrUnauthenticated
	}
	return sess, nil
}

// Logout destroys the session. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil && !errors.Is(err, session.ErrNotFound) {
		return persistenceError("delete session", err)
	}
	return nil
}

func matchUsername(want, got string) bool {
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

func matchPassword(stored, given string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
