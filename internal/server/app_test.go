package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/poskeeper/internal/dbx"
	"github.com/dmitrijs2005/poskeeper/internal/logging"
	"github.com/dmitrijs2005/poskeeper/internal/server/config"
	"github.com/dmitrijs2005/poskeeper/internal/server/models"
	"github.com/dmitrijs2005/poskeeper/internal/server/repositories/records"
	"github.com/dmitrijs2005/poskeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/poskeeper/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	created []string
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	for _, n := range f.created {
		if n == u.UserName {
			return nil, shared.ErrorAlreadyExists
		}
	}
	f.created = append(f.created, u.UserName)
	u.ID = "id-" + u.UserName
	return u, nil
}

func (f *fakeUsers) GetUserByLogin(context.Context, string) (*models.User, error) {
	return nil, errors.New("not used")
}

type fakeManager struct {
	migrated   bool
	migrateErr error
	users      *fakeUsers
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error {
	m.migrated = true
	return m.migrateErr
}
func (m *fakeManager) Users(dbx.DBTX) users.Repository     { return m.users }
func (m *fakeManager) Records(dbx.DBTX) records.Repository { return nil }

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.SecretKey = "k"
	return c
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestNewApp_MigratesAndCreatesOperator(t *testing.T) {
	db, _ := newMockDB(t)
	rm := &fakeManager{users: &fakeUsers{}}
	c := testConfig()
	c.OperatorUser, c.OperatorPassword = "op", "pw"

	app, err := newApp(context.Background(), c, logging.Discard(), db, rm)
	require.NoError(t, err)
	assert.True(t, rm.migrated)
	assert.Equal(t, []string{"op"}, rm.users.created)
	assert.NotNil(t, app.server)

	// a second start keeps the existing account
	_, err = newApp(context.Background(), c, logging.Discard(), db, rm)
	require.NoError(t, err)
	assert.Equal(t, []string{"op"}, rm.users.created)
}

func TestNewApp_NoOperatorConfigured(t *testing.T) {
	db, _ := newMockDB(t)
	rm := &fakeManager{users: &fakeUsers{}}

	_, err := newApp(context.Background(), testConfig(), logging.Discard(), db, rm)
	require.NoError(t, err)
	assert.Empty(t, rm.users.created)
}

func TestNewApp_MigrationError(t *testing.T) {
	db, _ := newMockDB(t)
	rm := &fakeManager{users: &fakeUsers{}, migrateErr: errors.New("bad schema")}

	_, err := newApp(context.Background(), testConfig(), logging.Discard(), db, rm)
	require.ErrorContains(t, err, "bad schema")
}

func TestNewApp_DBError(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })
	openDB = func(context.Context, string) (*sql.DB, error) { return nil, errors.New("refused") }

	_, err := NewApp(context.Background(), testConfig(), logging.Discard())
	require.ErrorContains(t, err, "db init error")
}

func TestRun_StopsAndClosesDB(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectClose()
	rm := &fakeManager{users: &fakeUsers{}}

	app, err := newApp(context.Background(), testConfig(), logging.Discard(), db, rm)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	require.NoError(t, app.Run(ctx))
	require.NoError(t, mock.ExpectationsWereMet())
}
