// Package auth gates the discovery screens behind a signed-in session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bevents/internal/domain"
)

// dummyPasswordHash is compared against when the email is unknown so that
// both failure paths cost one bcrypt comparison.
var dummyPasswordHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")

type Config struct {
	Secret     []byte
	Issuer     string
	SessionTTL time.Duration
}

type subscriber struct {
	id int
	fn func(*domain.User)
}

// Gate holds the current session and tells subscribers about every change.
type Gate struct {
	users    UserStore
	sessions SessionStore
	tokens   Tokens
	ttl      time.Duration
	cost     int
	now      func() time.Time
	logger   *slog.Logger

	mu          sync.Mutex
	user        *domain.User
	sessionID   string
	token       string
	subscribers []subscriber
	nextID      int
}

func NewGate(users UserStore, sessions SessionStore, cfg Config, logger *slog.Logger) *Gate {
	g := &Gate{
		users:    users,
		sessions: sessions,
		ttl:      cfg.SessionTTL,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
		logger:   logger.With("component", "auth"),
	}
	g.tokens = Tokens{
		Secret: cfg.Secret,
		Issuer: cfg.Issuer,
		Now:    func() time.Time { return g.now() },
	}
	return g
}

// CurrentSession returns the signed-in user, or nil.
func (g *Gate) CurrentSession() *domain.User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.user
}

// Token returns the session token of the signed-in user, or "".
func (g *Gate) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token
}

// Subscribe calls onChange right away with the current user and then after
// every sign in, sign up, sign out and resume. The returned function
// removes the subscription and may be called more than once.
func (g *Gate) Subscribe(onChange func(*domain.User)) func() {
	g.mu.Lock()
	g.nextID++
	id := g.nextID
	g.subscribers = append(g.subscribers, subscriber{id: id, fn: onChange})
	current := g.user
	g.mu.Unlock()

	onChange(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			for i, sub := range g.subscribers {
				if sub.id == id {
					g.subscribers = append(g.subscribers[:i], g.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

func (g *Gate) SignUp(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), g.cost)
	if err != nil {
		return nil, &domain.AuthError{Op: "sign up", Err: fmt.Errorf("hash password: %w", err)}
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    g.now().UTC(),
	}

	if err := g.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, &domain.AuthError{Op: "sign up", Err: ErrUserExists}
		}
		return nil, &domain.AuthError{Op: "sign up", Err: err}
	}

	g.logger.Info("user signed up", "user_id", user.ID)

	if err := g.startSession(ctx, user); err != nil {
		return nil, &domain.AuthError{Op: "sign up", Err: err}
	}
	return user, nil
}

func (g *Gate) SignIn(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := g.users.ByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
		return nil, &domain.AuthError{Op: "sign in", Err: ErrInvalidCredentials}
	}
	if err != nil {
		return nil, &domain.AuthError{Op: "sign in", Err: err}
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, &domain.AuthError{Op: "sign in", Err: ErrInvalidCredentials}
	}

	if err := g.startSession(ctx, user); err != nil {
		return nil, &domain.AuthError{Op: "sign in", Err: err}
	}

	g.logger.Info("user signed in", "user_id", user.ID)
	return user, nil
}

// Resume restores a session from a token issued earlier by this gate.
func (g *Gate) Resume(ctx context.Context, token string) (*domain.User, error) {
	claims, err := g.tokens.Verify(token)
	if err != nil {
		g.logger.Debug("rejected session token", "error", err)
		return nil, &domain.AuthError{Op: "resume session", Err: ErrUnauthorized}
	}

	session, err := g.sessions.Get(ctx, claims.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.AuthError{Op: "resume session", Err: ErrUnauthorized}
	}
	if err != nil {
		return nil, &domain.AuthError{Op: "resume session", Err: err}
	}
	if !session.Active(g.now()) || session.UserID != claims.Subject {
		return nil, &domain.AuthError{Op: "resume session", Err: ErrUnauthorized}
	}

	user, err := g.users.ByID(ctx, session.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.AuthError{Op: "resume session", Err: ErrUnauthorized}
	}
	if err != nil {
		return nil, &domain.AuthError{Op: "resume session", Err: err}
	}

	g.setSession(user, session.ID, token)
	return user, nil
}

// SignOut revokes the current session. The local session is cleared even
// when the revocation fails. Signing out while signed out does nothing.
func (g *Gate) SignOut(ctx context.Context) error {
	g.mu.Lock()
	sessionID := g.sessionID
	g.mu.Unlock()

	if sessionID == "" {
		return nil
	}

	err := g.sessions.Revoke(ctx, sessionID, g.now().UTC())
	g.setSession(nil, "", "")

	if err != nil {
		return &domain.AuthError{Op: "sign out", Err: err}
	}
	g.logger.Info("user signed out")
	return nil
}

func (g *Gate) startSession(ctx context.Context, user *domain.User) error {
	now := g.now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(g.ttl),
		CreatedAt: now,
	}

	token, err := g.tokens.Sign(session.ID, user.ID, user.Email, now, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	if err := g.sessions.Create(ctx, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	g.setSession(user, session.ID, token)
	return nil
}

func (g *Gate) setSession(user *domain.User, sessionID, token string) {
	g.mu.Lock()
	g.user = user
	g.sessionID = sessionID
	g.token = token
	subs := make([]subscriber, len(g.subscribers))
	copy(subs, g.subscribers)
	g.mu.Unlock()

	for _, sub := range subs {
		sub.fn(user)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
