package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"bevents/internal/domain"
	"bevents/internal/testutil"
)

var eventRowColumns = []string{
	"id", "title", "description", "category", "location", "latitude", "longitude",
	"start_time", "end_time", "image_url", "source_url", "club_name", "created_at", "scraped_at",
}

type StoreTestSuite struct {
	suite.Suite
	ctx  context.Context
	db   *sqlx.DB
	mock sqlmock.Sqlmock
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	db, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.db = sqlx.NewDb(db, "sqlmock")
	s.mock = mock
}

func (s *StoreTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) TestEventStore_List() {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(eventRowColumns).
		AddRow("b", "Newer", nil, "arts", "", nil, nil, nil, nil, nil, "", nil, created, created).
		AddRow("a", "Older", "desc", "work", "Sproul", 37.87, -122.25, created, nil, "img", "u", "Club", created.Add(-time.Hour), created)

	s.mock.ExpectQuery(`SELECT .* FROM events ORDER BY created_at DESC$`).WillReturnRows(rows)

	events, err := NewEventStore(s.db).List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(events, 2)

	s.Equal("b", events[0].ID)
	s.Nil(events[0].Description)
	s.Nil(events[0].Latitude)
	s.Equal(domain.CategoryArts, events[0].Category)

	s.Equal("Older", events[1].Title)
	s.Require().NotNil(events[1].Description)
	s.Equal("desc", *events[1].Description)
	s.Require().NotNil(events[1].Latitude)
	s.InDelta(37.87, *events[1].Latitude, 1e-9)
	s.Require().NotNil(events[1].ClubName)
	s.Equal("Club", *events[1].ClubName)
}

func (s *StoreTestSuite) TestEventStore_List_Empty() {
	s.mock.ExpectQuery(`FROM events`).WillReturnRows(sqlmock.NewRows(eventRowColumns))

	events, err := NewEventStore(s.db).List(s.ctx)
	s.NoError(err)
	s.NotNil(events)
	s.Empty(events)
}

func (s *StoreTestSuite) TestEventStore_List_Error() {
	s.mock.ExpectQuery(`FROM events`).WillReturnError(errors.New("connection refused"))

	_, err := NewEventStore(s.db).List(s.ctx)
	s.Error(err)
	s.Contains(err.Error(), "select events")
}

func (s *StoreTestSuite) TestEventStore_ListRecent() {
	s.mock.ExpectQuery(`ORDER BY created_at DESC LIMIT \$1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(eventRowColumns))

	events, err := NewEventStore(s.db).ListRecent(s.ctx, 3)
	s.NoError(err)
	s.Empty(events)
}

func (s *StoreTestSuite) TestEventStore_Insert() {
	scraped := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	event := &domain.ScrapedEvent{
		Title:       "Jazz Night",
		Description: testutil.Ptr("Live trio"),
		Category:    domain.CategoryArts,
		Location:    "Hertz Hall",
		SourceURL:   "https://example.com/jazz",
		ScrapedAt:   scraped,
	}

	s.mock.ExpectQuery(`INSERT INTO events`).
		WithArgs("Jazz Night", "Live trio", "arts", "Hertz Hall", nil, nil, nil, nil, nil, "https://example.com/jazz", nil, scraped).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("7f1c"))

	id, err := NewEventStore(s.db).Insert(s.ctx, event)
	s.NoError(err)
	s.Equal("7f1c", id)
}

func (s *StoreTestSuite) TestEventStore_ExistsByTitleAndStart() {
	start := time.Date(2025, 6, 14, 19, 0, 0, 0, time.UTC)

	s.mock.ExpectQuery(`start_time IS NOT DISTINCT FROM \$2`).
		WithArgs("Khruangbin", start).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	s.mock.ExpectQuery(`start_time IS NOT DISTINCT FROM \$2`).
		WithArgs("Khruangbin", nil).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	store := NewEventStore(s.db)

	exists, err := store.ExistsByTitleAndStart(s.ctx, "Khruangbin", &start)
	s.NoError(err)
	s.True(exists)

	exists, err = store.ExistsByTitleAndStart(s.ctx, "Khruangbin", nil)
	s.NoError(err)
	s.False(exists)
}

func (s *StoreTestSuite) TestUserStore_Create() {
	now := time.Now()
	user := &domain.User{ID: "u1", Email: "a@berkeley.edu", PasswordHash: []byte("hash"), CreatedAt: now}

	s.mock.ExpectExec(`INSERT INTO users`).
		WithArgs("u1", "a@berkeley.edu", []byte("hash"), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(NewUserStore(s.db).Create(s.ctx, user))
}

func (s *StoreTestSuite) TestUserStore_Create_Duplicate() {
	s.mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	err := NewUserStore(s.db).Create(s.ctx, &domain.User{ID: "u1", Email: "a@berkeley.edu"})
	s.ErrorIs(err, domain.ErrAlreadyExists)
}

func (s *StoreTestSuite) TestUserStore_ByEmail() {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("a@berkeley.edu").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow("u1", "a@berkeley.edu", []byte("hash"), created))

	user, err := NewUserStore(s.db).ByEmail(s.ctx, "a@berkeley.edu")
	s.Require().NoError(err)
	s.Equal("u1", user.ID)
	s.Equal([]byte("hash"), user.PasswordHash)
}

func (s *StoreTestSuite) TestUserStore_ByID_NotFound() {
	s.mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}))

	_, err := NewUserStore(s.db).ByID(s.ctx, "missing")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *StoreTestSuite) TestSessionStore_CreateGetRevoke() {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	session := &domain.Session{ID: "s1", UserID: "u1", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	store := NewSessionStore(s.db)

	s.mock.ExpectExec(`INSERT INTO sessions`).
		WithArgs("s1", "u1", now.Add(time.Hour), now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Require().NoError(store.Create(s.ctx, session))

	s.mock.ExpectQuery(`FROM sessions`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "revoked_at", "created_at"}).
			AddRow("s1", "u1", now.Add(time.Hour), nil, now))
	got, err := store.Get(s.ctx, "s1")
	s.Require().NoError(err)
	s.Equal("u1", got.UserID)
	s.Nil(got.RevokedAt)
	s.True(got.Active(now))

	s.mock.ExpectExec(`UPDATE sessions SET revoked_at`).
		WithArgs("s1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.NoError(store.Revoke(s.ctx, "s1", now))
}

func (s *StoreTestSuite) TestSessionStore_Get_NotFound() {
	s.mock.ExpectQuery(`FROM sessions`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "revoked_at", "created_at"}))

	_, err := NewSessionStore(s.db).Get(s.ctx, "nope")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *StoreTestSuite) TestSyncStateStore_Get_NewSource() {
	s.mock.ExpectQuery(`FROM sync_state`).
		WithArgs("callink").
		WillReturnRows(sqlmock.NewRows([]string{"id", "source_id", "last_synced_at", "total_synced"}))

	state, err := NewSyncStateStore(s.db).Get(s.ctx, "callink")
	s.Require().NoError(err)
	s.Equal("callink", state.SourceID)
	s.True(state.LastSyncedAt.IsZero())
	s.Zero(state.TotalSynced)
}

func (s *StoreTestSuite) TestSyncStateStore_Update() {
	now := time.Now()
	s.mock.ExpectExec(`INSERT INTO sync_state`).
		WithArgs("callink", now, int64(12)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := NewSyncStateStore(s.db).Update(s.ctx, &domain.SyncState{SourceID: "callink", LastSyncedAt: now, TotalSynced: 12})
	s.NoError(err)
}

func (s *StoreTestSuite) TestTransactionManager_Commit() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(`UPDATE sessions SET revoked_at`).WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	tm := NewTransactionManager(s.db)
	sessions := NewSessionStore(s.db)

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		s.NotNil(GetTxFromContext(ctx))
		return sessions.Revoke(ctx, "s1", time.Now())
	})
	s.NoError(err)
}

func (s *StoreTestSuite) TestTransactionManager_Rollback() {
	s.mock.ExpectBegin()
	s.mock.ExpectRollback()

	boom := errors.New("boom")
	err := NewTransactionManager(s.db).WithTransaction(s.ctx, func(ctx context.Context) error {
		return boom
	})
	s.ErrorIs(err, boom)
}

func (s *StoreTestSuite) TestTransactionManager_Nested() {
	s.mock.ExpectBegin()
	s.mock.ExpectCommit()

	tm := NewTransactionManager(s.db)
	err := tm.WithTransaction(s.ctx, func(outer context.Context) error {
		return tm.WithTransaction(outer, func(inner context.Context) error {
			s.Same(GetTxFromContext(outer), GetTxFromContext(inner))
			return nil
		})
	})
	s.NoError(err)
}
