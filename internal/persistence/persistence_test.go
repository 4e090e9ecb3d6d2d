package persistence

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventdesk/event-ticketing/internal/config"
)

func TestNewPostgres_RequiresDSN(t *testing.T) {
	_, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingDSN)
}

func TestNewMongo_RequiresURI(t *testing.T) {
	_, err := NewMongo(context.Background(), config.MongoConfig{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingMongoURI)
}

func TestRunMigrations_NoPool(t *testing.T) {
	fsys := fstest.MapFS{"0001_init.sql": {Data: []byte("SELECT 1")}}
	applied, err := RunMigrations(context.Background(), nil, fsys, zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, applied)
}

func TestNilHandlesPing(t *testing.T) {
	var (
		pg *Postgres
		rd *Redis
		mg *Mongo
	)
	ctx := context.Background()
	assert.Error(t, pg.Ping(ctx))
	assert.Error(t, rd.Ping(ctx))
	assert.Error(t, mg.Ping(ctx))
}
