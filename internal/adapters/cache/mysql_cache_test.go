package cache

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var cacheColumns = []string{"fingerprint", "is_scam", "score", "model_used", "last_seen", "expires_at"}

// unixNow matches a unix timestamp taken within the last few seconds
type unixNow struct{}

func (unixNow) Match(v driver.Value) bool {
	ts, ok := v.(int64)
	if !ok {
		return false
	}
	now := time.Now().Unix()
	return ts <= now && ts >= now-5
}

func newTestMySQLCache(t *testing.T) (*MySQLCache, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS scam_cache")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	cache, err := newMySQLCache(db, zap.NewNop(), 0)
	require.NoError(t, err)
	return cache, mock
}

func TestMySQLCache_Get(t *testing.T) {
	ctx := context.Background()
	cache, mock := newTestMySQLCache(t)
	selectSQL := regexp.QuoteMeta("FROM scam_cache WHERE fingerprint = ? AND expires_at > ?")

	expires := time.Now().Add(time.Hour).Unix()
	mock.ExpectQuery(selectSQL).
		WithArgs("abc", unixNow{}).
		WillReturnRows(sqlmock.NewRows(cacheColumns).
			AddRow("abc", true, 0.83, "keyword-heuristic", int64(1700000000), expires))
	mock.ExpectQuery(selectSQL).
		WithArgs("gone", unixNow{}).
		WillReturnRows(sqlmock.NewRows(cacheColumns))
	mock.ExpectQuery(selectSQL).
		WithArgs("broken", unixNow{}).
		WillReturnError(errors.New("connection reset"))

	entry, err := cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", entry.Key)
	assert.True(t, entry.IsScam)
	assert.Equal(t, 0.83, entry.Score)
	assert.Equal(t, "keyword-heuristic", entry.ModelUsed)
	assert.Equal(t, int64(1700000000), entry.LastSeen.Unix())
	assert.Equal(t, expires, entry.ExpiresAt.Unix())

	_, err = cache.Get(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = cache.Get(ctx, "broken")
	assert.ErrorContains(t, err, "connection reset")
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCache_SetUpserts(t *testing.T) {
	ctx := context.Background()
	cache, mock := newTestMySQLCache(t)
	entry := newEntry("abc", time.Hour)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scam_cache (fingerprint, is_scam, score, model_used, last_seen, expires_at) VALUES (?, ?, ?, ?, ?, ?) ON DUPLICATE KEY UPDATE")).
		WithArgs("abc", true, 0.83, "keyword-heuristic", entry.LastSeen.Unix(), entry.ExpiresAt.Unix()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scam_cache")).
		WillReturnError(errors.New("read-only"))

	require.NoError(t, cache.Set(ctx, entry))
	assert.ErrorContains(t, cache.Set(ctx, entry), "failed to insert cache entry")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCache_DeleteAndCleanup(t *testing.T) {
	ctx := context.Background()
	cache, mock := newTestMySQLCache(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM scam_cache WHERE fingerprint = ?")).
		WithArgs("abc").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM scam_cache WHERE expires_at <= ?")).
		WithArgs(unixNow{}).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectClose()

	require.NoError(t, cache.Delete(ctx, "abc"))
	require.NoError(t, cache.Cleanup(ctx))
	cache.Stop()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewMySQLCache_SchemaFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS scam_cache")).
		WillReturnError(errors.New("access denied"))
	mock.ExpectClose()

	_, err = newMySQLCache(db, zap.NewNop(), time.Hour)
	assert.ErrorContains(t, err, "failed to create table")
	assert.NoError(t, mock.ExpectationsWereMet())
}
