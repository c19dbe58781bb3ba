package db

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impostor/internal/wordbank"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	log, _ := test.NewNullLogger()
	ctx := context.Background()
	database, err := Connect(ctx, dsn, log)
	require.NoError(t, err, "Connect()")
	require.NoError(t, database.Migrate(ctx), "Migrate()")
	t.Cleanup(func() {
		// Clean up test data
		database.conn.Exec("DELETE FROM words WHERE category LIKE 'test-%'")
		database.Close()
	})
	return database
}

func TestConnect(t *testing.T) {
	database := getTestDB(t)
	assert.NoError(t, database.Ping(context.Background()))
}

func TestMigrate_Rerunnable(t *testing.T) {
	database := getTestDB(t)
	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx))

	var exists bool
	err := database.conn.QueryRow(`
		SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = $1)
	`, "words").Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLoadWords_Seeded(t *testing.T) {
	database := getTestDB(t)
	entries, err := database.LoadWords(context.Background())
	require.NoError(t, err)
	assert.Contains(t, entries, wordbank.Entry{Category: "Food", Word: "Pizza"})
	assert.GreaterOrEqual(t, wordbank.New(entries).Len(), 20)
}

func TestAddRemoveWord(t *testing.T) {
	database := getTestDB(t)
	ctx := context.Background()

	added, err := database.AddWord(ctx, "test-colors", "Teal")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = database.AddWord(ctx, "TEST-colors", "teal")
	require.NoError(t, err)
	assert.False(t, added, "pairs are unique regardless of case")

	entries, err := database.LoadWords(ctx)
	require.NoError(t, err)
	assert.Contains(t, entries, wordbank.Entry{Category: "test-colors", Word: "Teal"})

	removed, err := database.RemoveWord(ctx, "test-colors", "TEAL")
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = database.AddWord(ctx, " ", "x")
	assert.Error(t, err)
}
