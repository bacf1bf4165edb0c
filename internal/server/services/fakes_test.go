package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/poskeeper/internal/common"
	"github.com/dmitrijs2005/poskeeper/internal/dbx"
	"github.com/dmitrijs2005/poskeeper/internal/server/models"
	"github.com/dmitrijs2005/poskeeper/internal/server/repositories/records"
	"github.com/dmitrijs2005/poskeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/poskeeper/internal/shared"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	byName    map[string]*models.User
	createErr error
	getErr    error
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byName[u.UserName]; ok {
		return nil, shared.ErrorAlreadyExists
	}
	u.ID = "id-" + u.UserName
	f.byName[u.UserName] = u
	return u, nil
}

func (f *fakeUsers) GetUserByLogin(_ context.Context, name string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[name]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

type correctionRow struct {
	rec    models.Record
	saleID string
}

type fakeRecords struct {
	mu          sync.Mutex
	stored      map[string]models.Record
	corrections []correctionRow
	insertErr   error
	listErr     error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{stored: map[string]models.Record{}}
}

func (f *fakeRecords) Insert(_ context.Context, r *models.Record) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return false, f.insertErr
	}
	k := r.Type + "/" + r.ID
	if _, ok := f.stored[k]; ok {
		return false, nil
	}
	f.stored[k] = *r
	return true, nil
}

func (f *fakeRecords) AppendCorrection(_ context.Context, r *models.Record, saleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.corrections = append(f.corrections, correctionRow{rec: *r, saleID: saleID})
	return nil
}

func (f *fakeRecords) List(_ context.Context, typ string) ([]models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []models.Record{}
	if typ == common.TypeCorrection {
		for _, c := range f.corrections {
			out = append(out, c.rec)
		}
		return out, nil
	}
	for _, r := range f.stored {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeManager struct {
	users   *fakeUsers
	records *fakeRecords
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository             { return m.users }
func (m *fakeManager) Records(dbx.DBTX) records.Repository         { return m.records }

func newFakeManager() *fakeManager {
	return &fakeManager{
		users:   &fakeUsers{byName: map[string]*models.User{}},
		records: newFakeRecords(),
	}
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeArchive struct {
	bodies [][]byte
	err    error
}

func (a *fakeArchive) Store(_ context.Context, body []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.bodies = append(a.bodies, body)
	return "batches/test.json", nil
}

var errBoom = errors.New("boom")
