package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"shekinah-backend/internal/domain"
	adminrepo "shekinah-backend/internal/repository/admin"
)

// Role is the two-valued session role. Any authenticated back-office session
// is admin; everything else, including no session at all, is client.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRateLimited is returned after too many failed attempts for an email.
	ErrRateLimited = errors.New("too many failed login attempts")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

const (
	maxFailedAttempts = 5
	failureWindow     = 15 * time.Minute
)

// Claims carries the role claim alongside the registered JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session is the verified state attached to a request.
type Session struct {
	ID    string
	Email string
	Role  Role
}

type failureState struct {
	count       int
	windowStart time.Time
}

// Service wraps credential checks and session lifecycle. Active sessions live
// in an in-memory registry, which makes logout an actual revocation, and
// admin-presence transitions (zero to some, some to zero) are pushed to
// registered listeners so privileged subscriptions can follow the role.
type Service struct {
	repo   adminrepo.Repository
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]time.Time
	failures map[string]*failureState

	listenerMu sync.Mutex
	listeners  []func(bool)
}

func New(repo adminrepo.Repository, secret string, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		secret:   []byte(secret),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]time.Time),
		failures: make(map[string]*failureState),
	}
}

// OnAdminPresence registers a listener for admin-presence transitions. The
// listener is invoked with true when the first admin session appears and with
// false when the last one ends.
func (s *Service) OnAdminPresence(fn func(active bool)) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Login checks credentials and issues a session token with an admin role
// claim. Provider-style failures are distinguishable by the caller:
// ErrInvalidCredentials, ErrRateLimited, or an underlying lookup error.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	if s.blocked(email) {
		return "", ErrRateLimited
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.recordFailure(email)
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordFailure(email)
		return "", ErrInvalidCredentials
	}
	s.clearFailures(email)

	now := s.now()
	expires := now.Add(s.ttl)
	sessionID := uuid.NewString()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Email: user.Email,
		Role:  RoleAdmin,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.pruneLocked(now)
	wasEmpty := len(s.sessions) == 0
	s.sessions[sessionID] = expires
	s.mu.Unlock()

	s.logger.Info("auth: session opened", zap.String("email", user.Email))
	if wasEmpty {
		s.notify(true)
	}
	return token, nil
}

// Logout revokes the session behind a token. Errors beyond logging are
// swallowed: an already-expired or unknown token logs out to the same place.
func (s *Service) Logout(token string) {
	claims, err := s.parse(token)
	if err != nil {
		s.logger.Debug("auth: logout with unverifiable token", zap.Error(err))
		return
	}

	s.mu.Lock()
	delete(s.sessions, claims.ID)
	s.pruneLocked(s.now())
	empty := len(s.sessions) == 0
	s.mu.Unlock()

	s.logger.Info("auth: session closed", zap.String("email", claims.Email))
	if empty {
		s.notify(false)
	}
}

// Verify resolves a token into a session. Tokens that are absent, malformed,
// expired, or revoked yield ErrInvalidToken; callers map that to role client.
func (s *Service) Verify(token string) (Session, error) {
	claims, err := s.parse(token)
	if err != nil {
		return Session{}, ErrInvalidToken
	}

	s.mu.Lock()
	expires, ok := s.sessions[claims.ID]
	s.mu.Unlock()
	if !ok || s.now().After(expires) {
		return Session{}, ErrInvalidToken
	}

	role := claims.Role
	if role != RoleAdmin {
		role = RoleClient
	}
	return Session{ID: claims.ID, Email: claims.Email, Role: role}, nil
}

func (s *Service) parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Sweep drops expired sessions and fires the presence transition if the last
// admin session aged out without an explicit logout. Lapsed failed-login
// windows are dropped too, so the failure map cannot grow unbounded.
func (s *Service) Sweep() {
	s.mu.Lock()
	now := s.now()
	had := len(s.sessions) > 0
	s.pruneLocked(now)
	empty := len(s.sessions) == 0
	for email, state := range s.failures {
		if now.Sub(state.windowStart) > failureWindow {
			delete(s.failures, email)
		}
	}
	s.mu.Unlock()
	if had && empty {
		s.notify(false)
	}
}

func (s *Service) notify(active bool) {
	s.listenerMu.Lock()
	listeners := make([]func(bool), len(s.listeners))
	copy(listeners, s.listeners)
	s.listenerMu.Unlock()
	for _, fn := range listeners {
		fn(active)
	}
}

// pruneLocked drops expired sessions. Callers hold s.mu.
func (s *Service) pruneLocked(now time.Time) {
	for id, expires := range s.sessions {
		if now.After(expires) {
			delete(s.sessions, id)
		}
	}
}

func (s *Service) blocked(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.failures[email]
	if !ok {
		return false
	}
	if s.now().Sub(state.windowStart) > failureWindow {
		delete(s.failures, email)
		return false
	}
	return state.count >= maxFailedAttempts
}

func (s *Service) recordFailure(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	state, ok := s.failures[email]
	if !ok || now.Sub(state.windowStart) > failureWindow {
		s.failures[email] = &failureState{count: 1, windowStart: now}
		return
	}
	state.count++
}

func (s *Service) clearFailures(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, email)
}
