package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IL272/Wilddict/internal/database"
	"github.com/IL272/Wilddict/internal/model"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Options{Driver: database.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, database.DriverSQLite, zap.NewNop()))
	return db
}

func mustAccount(t *testing.T, r *AccountRepo, email, username string) *model.Account {
	t.Helper()
	a := &model.Account{Email: email, Username: username, PasswordHash: "hash", IsActive: true}
	require.NoError(t, r.Create(context.Background(), a))
	return a
}

func TestAccountRepo_CreateAndGet(t *testing.T) {
	r := NewAccountRepo(newTestDB(t))
	ctx := context.Background()

	a := mustAccount(t, r, "a@x.com", "alice")
	require.NotZero(t, a.ID)
	require.False(t, a.CreatedAt.IsZero())

	got, err := r.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.IsActive)

	byID, err := r.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)

	// emails are stored and matched exactly
	_, err = r.GetByEmail(ctx, "A@X.COM")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountRepo_UniqueViolations(t *testing.T) {
	r := NewAccountRepo(newTestDB(t))
	ctx := context.Background()
	mustAccount(t, r, "a@x.com", "alice")

	err := r.Create(ctx, &model.Account{Email: "a@x.com", Username: "other", PasswordHash: "h", IsActive: true})
	var ce ConflictError
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, "email", ce.Field)
	assert.ErrorIs(t, err, ErrConflict)

	err = r.Create(ctx, &model.Account{Email: "b@x.com", Username: "alice", PasswordHash: "h", IsActive: true})
	require.True(t, errors.As(err, &ce), "got %v", err)
	assert.Equal(t, "username", ce.Field)
}

func TestAccountRepo_GetByEmailOrUsernamePrefersEmail(t *testing.T) {
	r := NewAccountRepo(newTestDB(t))
	ctx := context.Background()
	bob := mustAccount(t, r, "b@x.com", "bob")
	alice := mustAccount(t, r, "a@x.com", "alice")

	got, err := r.GetByEmailOrUsername(ctx, "a@x.com", "bob")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	got, err = r.GetByEmailOrUsername(ctx, "new@x.com", "bob")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.ID)

	_, err = r.GetByEmailOrUsername(ctx, "new@x.com", "nobody")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountRepo_SetActive(t *testing.T) {
	r := NewAccountRepo(newTestDB(t))
	ctx := context.Background()
	a := mustAccount(t, r, "a@x.com", "alice")

	require.NoError(t, r.SetActive(ctx, a.ID, false))
	got, err := r.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, r.SetActive(ctx, 9999, false), ErrAccountNotFound)
}

func TestWordRepo_OwnerScoping(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountRepo(db)
	words := NewWordRepo(db)
	ctx := context.Background()

	alice := mustAccount(t, accounts, "a@x.com", "alice")
	bob := mustAccount(t, accounts, "b@x.com", "bob")

	w := &model.Word{
		OwnerID:        alice.ID,
		Word:           "Lagom",
		Definition:     "Just the right amount",
		Example:        "Lagom är bäst.",
		Language:       "Swedish",
		SourceLanguage: "English",
		Tags:           []string{"adjective", "philosophy"},
	}
	require.NoError(t, words.Create(ctx, w))
	require.NotZero(t, w.ID)

	got, err := words.GetByIDAndOwner(ctx, w.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"adjective", "philosophy"}, got.Tags)
	assert.Equal(t, alice.ID, got.OwnerID)

	_, err = words.GetByIDAndOwner(ctx, w.ID, bob.ID)
	assert.ErrorIs(t, err, ErrWordNotFound)
	_, err = words.GetByIDAndOwner(ctx, w.ID+100, alice.ID)
	assert.ErrorIs(t, err, ErrWordNotFound)

	_, err = words.UpdateByIDAndOwner(ctx, w.ID, bob.ID, model.WordInput{Word: "hijack", Language: "x"})
	assert.ErrorIs(t, err, ErrWordNotFound)
	assert.ErrorIs(t, words.DeleteByIDAndOwner(ctx, w.ID, bob.ID), ErrWordNotFound)

	list, err := words.ListByOwner(ctx, bob.ID, model.WordFilter{Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, list)

	updated, err := words.UpdateByIDAndOwner(ctx, w.ID, alice.ID, model.WordInput{
		Word: "Lagom", Definition: "Enough", Example: "", Language: "Swedish", SourceLanguage: "English",
	})
	require.NoError(t, err)
	assert.Equal(t, "Enough", updated.Definition)
	assert.Equal(t, []string{}, updated.Tags)

	// an update that changes nothing still finds the row
	_, err = words.UpdateByIDAndOwner(ctx, w.ID, alice.ID, model.WordInput{
		Word: "Lagom", Definition: "Enough", Example: "", Language: "Swedish", SourceLanguage: "English",
	})
	require.NoError(t, err)

	require.NoError(t, words.DeleteByIDAndOwner(ctx, w.ID, alice.ID))
	assert.ErrorIs(t, words.DeleteByIDAndOwner(ctx, w.ID, alice.ID), ErrWordNotFound)
}

func TestWordRepo_ListFiltersAndStats(t *testing.T) {
	db := newTestDB(t)
	accounts := NewAccountRepo(db)
	words := NewWordRepo(db)
	ctx := context.Background()
	alice := mustAccount(t, accounts, "a@x.com", "alice")
	bob := mustAccount(t, accounts, "b@x.com", "bob")

	for _, in := range []struct{ word, lang string }{
		{"Hygge", "Danish"}, {"Saudade", "Portuguese"}, {"Lagom", "Swedish"}, {"Fika", "Swedish"},
	} {
		require.NoError(t, words.Create(ctx, &model.Word{OwnerID: alice.ID, Word: in.word, Language: in.lang}))
	}
	require.NoError(t, words.Create(ctx, &model.Word{OwnerID: bob.ID, Word: "Bonjour", Language: "French"}))

	all, err := words.ListByOwner(ctx, alice.ID, model.WordFilter{Limit: 100})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Hygge", all[0].Word)

	swedish, err := words.ListByOwner(ctx, alice.ID, model.WordFilter{Language: "Swedish", Limit: 100})
	require.NoError(t, err)
	assert.Len(t, swedish, 2)

	page, err := words.ListByOwner(ctx, alice.ID, model.WordFilter{Skip: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Saudade", page[0].Word)

	st, err := words.StatsByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, st.TotalWords)
	assert.Equal(t, []string{"Danish", "Portuguese", "Swedish"}, st.Languages)
	assert.Equal(t, 3, st.LanguageCount)

	exists, err := words.ExistsForOwner(ctx, bob.ID, "Bonjour")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = words.ExistsForOwner(ctx, bob.ID, "Hygge")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWordRepo_LanguageIsCaseSensitive(t *testing.T) {
	db := newTestDB(t)
	words := NewWordRepo(db)
	ctx := context.Background()
	alice := mustAccount(t, NewAccountRepo(db), "a@x.com", "alice")

	require.NoError(t, words.Create(ctx, &model.Word{OwnerID: alice.ID, Word: "hola", Language: "es"}))
	require.NoError(t, words.Create(ctx, &model.Word{OwnerID: alice.ID, Word: "adios", Language: "ES"}))

	lower, err := words.ListByOwner(ctx, alice.ID, model.WordFilter{Language: "es", Limit: 100})
	require.NoError(t, err)
	require.Len(t, lower, 1)
	assert.Equal(t, "hola", lower[0].Word)

	st, err := words.StatsByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ES", "es"}, st.Languages)
	assert.Equal(t, 2, st.LanguageCount)
}
