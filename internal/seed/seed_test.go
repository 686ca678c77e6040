package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/IL272/Wilddict/internal/database"
	"github.com/IL272/Wilddict/internal/metrics"
	"github.com/IL272/Wilddict/internal/model"
	"github.com/IL272/Wilddict/internal/repository"
	"github.com/IL272/Wilddict/internal/service"
	"github.com/IL272/Wilddict/internal/utils"
)

func TestRun_Idempotent(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(database.Options{Driver: database.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db, database.DriverSQLite, zap.NewNop()))

	accounts := repository.NewAccountRepo(db)
	words := repository.NewWordRepo(db)
	registry := service.NewRegistry(accounts, utils.NewHasher(bcrypt.MinCost), utils.NewTokenCodec("s"),
		time.Hour, nil, metrics.NewAuth(), zap.NewNop())
	s := &Seeder{
		Registry: registry,
		Words:    service.NewWordService(words, nil, nil, zap.NewNop()),
		Existing: words,
		Log:      zap.NewNop(),
	}

	res, err := s.Run(ctx, Demo)
	require.NoError(t, err)
	assert.Equal(t, Result{Accounts: 3, Words: 9}, res)

	res, err = s.Run(ctx, Demo)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	sess, err := registry.Login(ctx, "user2@example.com", DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, "Bob", sess.Account.Username)

	list, err := words.ListByOwner(ctx, sess.Account.ID, model.WordFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"greeting", "phrase"}, list[0].Tags)
}
