package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"electromatrix/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func memoryConfig() *config.Config {
	return &config.Config{
		StoreDriver:     "memory",
		JWTSecret:       "secret",
		TokenTTL:        time.Hour,
		SectionDuration: 20 * time.Minute,
		PoolCacheTTL:    time.Minute,
		CORSOrigins:     []string{"*"},
	}
}

func TestNewWithMemoryStore(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	defer a.Close(ctx)

	assert.Nil(t, a.Redis)

	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewWithRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := memoryConfig()
	cfg.RedisURL = "redis://" + mr.Addr()

	a, err := New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, a.Redis)
	require.NoError(t, a.Close(ctx))
}

func TestNewRejectsBadRedisURL(t *testing.T) {
	cfg := memoryConfig()
	cfg.RedisURL = "not a url"

	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewRejectsBadPoolsFile(t *testing.T) {
	cfg := memoryConfig()
	cfg.PoolsFile = "/does/not/exist.yaml"

	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewWarnsAboutPlaceholderSecret(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	cfg := memoryConfig()
	cfg.JWTSecret = config.DefaultJWTSecret

	a, err := New(ctx, cfg, zap.New(core))
	require.NoError(t, err)
	defer a.Close(ctx)
	assert.Equal(t, 1, logs.FilterMessageSnippet("JWT_SECRET").Len())

	core, logs = observer.New(zapcore.WarnLevel)
	b, err := New(ctx, memoryConfig(), zap.New(core))
	require.NoError(t, err)
	defer b.Close(ctx)
	assert.Zero(t, logs.FilterMessageSnippet("JWT_SECRET").Len())
}
