package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDb(t *testing.T) *sql.DB {
	t.Helper()

	_ = godotenv.Load()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	db, err := openDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, initSchema(ctx, db))
	_, err = db.ExecContext(ctx, `TRUNCATE image_resolutions`)
	require.NoError(t, err)

	return db
}

func TestResolutionStoreRoundTrip(t *testing.T) {
	store := &resolutionStore{db: openTestDb(t)}
	ctx := context.Background()
	base := time.Date(2025, 3, 16, 4, 0, 0, 0, time.UTC)

	require.NoError(t, store.recordResolution(ctx, Resolution{
		DriverID: "hamilton", ImageURL: hamiltonURL,
		SearchTerm: "Lewis Hamilton Formula One driver", ResolvedAt: base,
	}))
	require.NoError(t, store.recordResolution(ctx, Resolution{
		DriverID: "totally_unknown_id", ImageURL: placeholderImage("totally_unknown_id"),
		Placeholder: true, ResolvedAt: base.Add(time.Minute),
	}))

	got, err := store.listResolutions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "totally_unknown_id", got[0].DriverID)
	assert.True(t, got[0].Placeholder)
	assert.Equal(t, "hamilton", got[1].DriverID)
	assert.Equal(t, "Lewis Hamilton Formula One driver", got[1].SearchTerm)

	got, err = store.listResolutions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestResolverRecordsToDatabase(t *testing.T) {
	store := &resolutionStore{db: openTestDb(t)}
	r := newImageResolver(&fakeSource{}, newImageCache(), withRecorder(store))

	_, err := r.Resolve(context.Background(), "nobody", "Nobody")
	require.NoError(t, err)

	got, err := store.listResolutions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Placeholder)
}

func TestGetResolutionsHandler(t *testing.T) {
	store := &resolutionStore{db: openTestDb(t)}
	ts, _ := newTestServer(t, &fakeSource{}, func(a *api) { a.store = store })

	require.NoError(t, store.recordResolution(context.Background(), Resolution{
		DriverID: "hamilton", ImageURL: hamiltonURL, ResolvedAt: time.Now().UTC(),
	}))

	var got []Resolution
	getJSON(t, ts.URL+"/resolutions?limit=5", http.StatusOK, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "hamilton", got[0].DriverID)

	getJSON(t, ts.URL+"/resolutions?limit=zero", http.StatusBadRequest, nil)
}
