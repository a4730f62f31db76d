package vectorstore

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vaultrag-api/errs"
)

func newMockStore(t *testing.T, dimension int) (*Store, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return New(db, dimension), mock
}

func searchColumns() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"chunk_id", "document_id", "title", "text", "ordinal", "score"})
}

func TestSearchVaultFilter(t *testing.T) {
	store, mock := newMockStore(t, 3)

	title := "Doc One"
	mock.ExpectQuery(`FROM chunk_embeddings WHERE vault_id = `).
		WillReturnRows(searchColumns().
			AddRow("c1", "doc-1", title, "first chunk "+strings.Repeat("x", 300), 0, 0.95).
			AddRow("c2", "doc-2", nil, "second chunk", 3, 0.82))

	vaultID := "vault-1"
	results, err := store.Search(context.Background(), []float32{1, 2, 3}, 5, &vaultID)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "doc-1", results[0].DocumentID)
	require.NotNil(t, results[0].Title)
	assert.Equal(t, "Doc One", *results[0].Title)
	assert.Equal(t, 0.95, results[0].Score)
	assert.Nil(t, results[1].Title)

	// Scores are non-increasing, snippets bounded at 200 runes
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.LessOrEqual(t, len([]rune(results[0].Snippet)), 200)
	assert.Equal(t, "second chunk", results[1].Snippet)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchNullVaultUsesIsNull(t *testing.T) {
	store, mock := newMockStore(t, 3)

	mock.ExpectQuery(`FROM chunk_embeddings WHERE vault_id IS NULL`).
		WillReturnRows(searchColumns())

	results, err := store.Search(context.Background(), []float32{1, 2, 3}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchValidatesInput(t *testing.T) {
	store, _ := newMockStore(t, 3)

	_, err := store.Search(context.Background(), []float32{1, 2}, 5, nil)
	assert.True(t, errs.IsKind(err, errs.KindValidation))

	_, err = store.Search(context.Background(), []float32{1, 2, 3}, 0, nil)
	assert.True(t, errs.IsKind(err, errs.KindValidation))
}

func TestUpsertChunksTransactional(t *testing.T) {
	store, mock := newMockStore(t, 3)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM chunk_embeddings WHERE document_id = `).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO chunk_embeddings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO chunk_embeddings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	vaultID := "vault-1"
	err := store.UpsertChunks(context.Background(), "doc-1", &vaultID, nil, nil, []ChunkRecord{
		{Ordinal: 0, Text: "first", TokenCount: 2, Vector: []float32{1, 2, 3}},
		{Ordinal: 1, Text: "second", TokenCount: 2, Vector: []float32{4, 5, 6}},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertChunksRollsBackOnInsertFailure(t *testing.T) {
	store, mock := newMockStore(t, 3)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM chunk_embeddings WHERE document_id = `).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO chunk_embeddings`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := store.UpsertChunks(context.Background(), "doc-1", nil, nil, nil, []ChunkRecord{
		{Ordinal: 0, Text: "first", TokenCount: 2, Vector: []float32{1, 2, 3}},
	})
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindStoreUnavailable))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertChunksValidatesBeforeWriting(t *testing.T) {
	store, _ := newMockStore(t, 3)

	err := store.UpsertChunks(context.Background(), "doc-1", nil, nil, nil, []ChunkRecord{
		{Ordinal: 0, Text: "ok", Vector: []float32{1, 2}},
	})
	assert.True(t, errs.IsKind(err, errs.KindValidation))

	err = store.UpsertChunks(context.Background(), "doc-1", nil, nil, nil, []ChunkRecord{
		{Ordinal: 0, Text: "", Vector: []float32{1, 2, 3}},
	})
	assert.True(t, errs.IsKind(err, errs.KindValidation))
}

func TestDeleteByVaultIdempotent(t *testing.T) {
	store, mock := newMockStore(t, 3)

	// Zero rows affected is still success
	mock.ExpectExec(`DELETE FROM chunk_embeddings WHERE vault_id = `).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.DeleteByVault(context.Background(), "no-such-vault"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByDocument(t *testing.T) {
	store, mock := newMockStore(t, 3)

	mock.ExpectExec(`DELETE FROM chunk_embeddings WHERE document_id = `).
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, store.DeleteByDocument(context.Background(), "doc-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByDocument(t *testing.T) {
	store, mock := newMockStore(t, 3)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM chunk_embeddings WHERE document_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := store.CountByDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}
