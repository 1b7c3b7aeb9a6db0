package history

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the Store contract against a live backend.
func exerciseStore(t *testing.T, ctx context.Context, store Store) {
	t.Helper()
	showID := "test" + uuid.NewString()[:8]

	_, ok, err := store.Last(ctx, showID)
	require.NoError(t, err)
	assert.False(t, ok)

	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Set(ctx, showID, first))
	require.NoError(t, store.Set(ctx, showID, first.Add(24*time.Hour)))

	got, ok, err := store.Last(ctx, showID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(first.Add(24*time.Hour)), "got %s", got)
}

func TestIntegration_MongoStore(t *testing.T) {
	// Skip if short test
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	uri := os.Getenv("RADIOCUT_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("RADIOCUT_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	store := NewMongoStore(uri, "radiocut_test", "history_test")
	if err := store.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer store.Close(ctx)

	exerciseStore(t, ctx, store)
}

func TestIntegration_PostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	dsn := os.Getenv("RADIOCUT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("RADIOCUT_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store := NewPostgresStore(PostgresConfig{DSN: dsn, MaxOpenConns: 2})
	if err := store.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer store.Close(ctx)

	exerciseStore(t, ctx, store)
}
