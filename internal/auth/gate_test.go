package auth

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"bevents/internal/auth/mocks"
	"bevents/internal/domain"
)

type GateTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller
	ctx  context.Context

	users    *mocks.MockUserStore
	sessions *mocks.MockSessionStore

	gate *Gate
	now  time.Time
	seen []*domain.User
}

func (s *GateTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.ctx = context.Background()
	s.users = mocks.NewMockUserStore(s.ctrl)
	s.sessions = mocks.NewMockSessionStore(s.ctrl)
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.seen = nil

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.gate = NewGate(s.users, s.sessions, Config{
		Secret:     []byte("test-secret"),
		Issuer:     "bevents",
		SessionTTL: 24 * time.Hour,
	}, logger)
	s.gate.cost = bcrypt.MinCost
	s.gate.now = func() time.Time { return s.now }
}

func (s *GateTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestGateTestSuite(t *testing.T) {
	suite.Run(t, new(GateTestSuite))
}

func (s *GateTestSuite) record() func() {
	return s.gate.Subscribe(func(u *domain.User) {
		s.seen = append(s.seen, u)
	})
}

func (s *GateTestSuite) storedUser(email, password string) *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	s.Require().NoError(err)
	return &domain.User{ID: "user-1", Email: email, PasswordHash: hash, CreatedAt: s.now}
}

func (s *GateTestSuite) TestSubscribe_FiresImmediately() {
	unsubscribe := s.record()
	defer unsubscribe()

	s.Require().Len(s.seen, 1)
	s.Nil(s.seen[0])
	s.Nil(s.gate.CurrentSession())
}

func (s *GateTestSuite) TestSignUp_StartsSession() {
	s.record()

	s.users.EXPECT().Create(s.ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, u *domain.User) error {
			s.Equal("oski@berkeley.edu", u.Email)
			s.NoError(bcrypt.CompareHashAndPassword(u.PasswordHash, []byte("golden")))
			s.NotEmpty(u.ID)
			return nil
		},
	)
	s.sessions.EXPECT().Create(s.ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, sess *domain.Session) error {
			s.Equal(s.now.Add(24*time.Hour), sess.ExpiresAt)
			return nil
		},
	)

	user, err := s.gate.SignUp(s.ctx, "  Oski@Berkeley.edu ", "golden")
	s.Require().NoError(err)
	s.Equal("oski@berkeley.edu", user.Email)
	s.Same(user, s.gate.CurrentSession())
	s.NotEmpty(s.gate.Token())

	s.Require().Len(s.seen, 2)
	s.Same(user, s.seen[1])
}

func (s *GateTestSuite) TestSignUp_DuplicateEmail() {
	s.users.EXPECT().Create(s.ctx, gomock.Any()).
		Return(errors.Join(errors.New("insert user"), domain.ErrAlreadyExists))

	_, err := s.gate.SignUp(s.ctx, "oski@berkeley.edu", "golden")

	var authErr *domain.AuthError
	s.Require().ErrorAs(err, &authErr)
	s.Equal("sign up", authErr.Op)
	s.ErrorIs(err, ErrUserExists)
	s.Nil(s.gate.CurrentSession())
}

func (s *GateTestSuite) TestSignIn_Success() {
	stored := s.storedUser("oski@berkeley.edu", "golden")
	s.record()

	s.users.EXPECT().ByEmail(s.ctx, "oski@berkeley.edu").Return(stored, nil)
	s.sessions.EXPECT().Create(s.ctx, gomock.Any()).Return(nil)

	user, err := s.gate.SignIn(s.ctx, "OSKI@berkeley.edu", "golden")
	s.Require().NoError(err)
	s.Equal("user-1", user.ID)
	s.Len(s.seen, 2)

	claims, err := s.gate.tokens.Verify(s.gate.Token())
	s.Require().NoError(err)
	s.Equal("user-1", claims.Subject)
	s.Equal("oski@berkeley.edu", claims.Email)
}

func (s *GateTestSuite) TestSignIn_WrongPassword() {
	s.users.EXPECT().ByEmail(s.ctx, "oski@berkeley.edu").Return(s.storedUser("oski@berkeley.edu", "golden"), nil)

	_, err := s.gate.SignIn(s.ctx, "oski@berkeley.edu", "bears")
	s.ErrorIs(err, ErrInvalidCredentials)
	s.Nil(s.gate.CurrentSession())
}

func (s *GateTestSuite) TestSignIn_UnknownEmail() {
	s.users.EXPECT().ByEmail(s.ctx, "nobody@berkeley.edu").Return(nil, domain.ErrNotFound)

	_, err := s.gate.SignIn(s.ctx, "nobody@berkeley.edu", "golden")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *GateTestSuite) TestSignIn_StoreError() {
	s.users.EXPECT().ByEmail(s.ctx, "oski@berkeley.edu").Return(nil, errors.New("connection refused"))

	_, err := s.gate.SignIn(s.ctx, "oski@berkeley.edu", "golden")
	var authErr *domain.AuthError
	s.Require().ErrorAs(err, &authErr)
	s.NotErrorIs(err, ErrInvalidCredentials)
}

func (s *GateTestSuite) TestSignIn_NoSecretCreatesNoSession() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	gate := NewGate(s.users, s.sessions, Config{Issuer: "bevents", SessionTTL: time.Hour}, logger)
	gate.cost = bcrypt.MinCost

	s.users.EXPECT().ByEmail(s.ctx, "oski@berkeley.edu").Return(s.storedUser("oski@berkeley.edu", "golden"), nil)
	s.sessions.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	_, err := gate.SignIn(s.ctx, "oski@berkeley.edu", "golden")
	s.ErrorIs(err, ErrNoSecret)
	s.Nil(gate.CurrentSession())
	s.Empty(gate.Token())
}

func (s *GateTestSuite) signedIn() (*domain.User, string) {
	stored := s.storedUser("oski@berkeley.edu", "golden")
	var sessionID string
	s.users.EXPECT().ByEmail(s.ctx, "oski@berkeley.edu").Return(stored, nil)
	s.sessions.EXPECT().Create(s.ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, sess *domain.Session) error {
			sessionID = sess.ID
			return nil
		},
	)
	_, err := s.gate.SignIn(s.ctx, "oski@berkeley.edu", "golden")
	s.Require().NoError(err)
	return stored, sessionID
}

func (s *GateTestSuite) TestSignOut() {
	_, sessionID := s.signedIn()
	s.record()

	s.sessions.EXPECT().Revoke(s.ctx, sessionID, s.now).Return(nil)

	s.NoError(s.gate.SignOut(s.ctx))
	s.Nil(s.gate.CurrentSession())
	s.Empty(s.gate.Token())
	s.Require().Len(s.seen, 2)
	s.Nil(s.seen[1])

	s.NoError(s.gate.SignOut(s.ctx))
	s.Len(s.seen, 2)
}

func (s *GateTestSuite) TestSignOut_RevokeFailureStillClears() {
	s.signedIn()
	s.sessions.EXPECT().Revoke(s.ctx, gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	err := s.gate.SignOut(s.ctx)
	s.Error(err)
	s.Nil(s.gate.CurrentSession())
}

func (s *GateTestSuite) TestResume() {
	stored, sessionID := s.signedIn()
	token := s.gate.Token()

	other := NewGate(s.users, s.sessions, Config{Secret: []byte("test-secret"), Issuer: "bevents", SessionTTL: time.Hour}, slog.Default())
	other.now = s.gate.now

	var seen []*domain.User
	other.Subscribe(func(u *domain.User) { seen = append(seen, u) })

	s.sessions.EXPECT().Get(s.ctx, sessionID).Return(&domain.Session{
		ID: sessionID, UserID: stored.ID, ExpiresAt: s.now.Add(time.Hour),
	}, nil)
	s.users.EXPECT().ByID(s.ctx, stored.ID).Return(stored, nil)

	user, err := other.Resume(s.ctx, token)
	s.Require().NoError(err)
	s.Equal(stored.ID, user.ID)
	s.Equal(token, other.Token())
	s.Len(seen, 2)
}

func (s *GateTestSuite) TestResume_Revoked() {
	stored, sessionID := s.signedIn()
	revoked := s.now

	s.sessions.EXPECT().Get(s.ctx, sessionID).Return(&domain.Session{
		ID: sessionID, UserID: stored.ID, ExpiresAt: s.now.Add(time.Hour), RevokedAt: &revoked,
	}, nil)

	_, err := s.gate.Resume(s.ctx, s.gate.Token())
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *GateTestSuite) TestResume_BadToken() {
	_, err := s.gate.Resume(s.ctx, "not-a-token")
	s.ErrorIs(err, ErrUnauthorized)

	forged, err := Tokens{Secret: []byte("other"), Issuer: "bevents"}.Sign("s", "u", "e", s.now, s.now.Add(time.Hour))
	s.Require().NoError(err)
	_, err = s.gate.Resume(s.ctx, forged)
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *GateTestSuite) TestUnsubscribe() {
	unsubscribe := s.record()
	unsubscribe()
	unsubscribe()

	s.users.EXPECT().ByEmail(s.ctx, "oski@berkeley.edu").Return(s.storedUser("oski@berkeley.edu", "golden"), nil)
	s.sessions.EXPECT().Create(s.ctx, gomock.Any()).Return(nil)

	_, err := s.gate.SignIn(s.ctx, "oski@berkeley.edu", "golden")
	s.Require().NoError(err)
	s.Len(s.seen, 1)
}
