package storage_test

import (
	"context"
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floatchat-ai/floatchat/internal/model"
	"github.com/floatchat-ai/floatchat/internal/storage"
	"github.com/floatchat-ai/floatchat/internal/testutil"
)

var testDB *storage.DB

func TestMain(m *testing.M) {
	// testing.Short panics unless flags are parsed first.
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	tc := testutil.MustStartPostgres()
	defer tc.Terminate()

	var err error
	testDB, err = tc.NewTestDB(context.Background(), testutil.TestLogger())
	if err != nil {
		tc.Terminate()
		os.Exit(1)
	}
	defer testDB.Close()

	os.Exit(m.Run())
}

func skipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test requires docker")
	}
}

func TestUpsertFloatIdempotent(t *testing.T) {
	skipIfShort(t)
	ctx := context.Background()

	f := model.FloatMeta{
		FloatID:         "5904321",
		ProjectName:     "Argo AUSTRALIA",
		LatestLatitude:  -35.21,
		LatestLongitude: 150.87,
	}
	require.NoError(t, testDB.UpsertFloat(ctx, f))

	f.LatestLatitude = -36.02
	require.NoError(t, testDB.UpsertFloat(ctx, f))

	got, err := testDB.GetFloat(ctx, "5904321")
	require.NoError(t, err)
	assert.Equal(t, -36.02, got.LatestLatitude)
	assert.Equal(t, "Argo AUSTRALIA", got.ProjectName)
}

func TestGetFloatNotFound(t *testing.T) {
	skipIfShort(t)

	_, err := testDB.GetFloat(context.Background(), "no-such-float")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInsertAndQueryMeasurements(t *testing.T) {
	skipIfShort(t)
	ctx := context.Background()

	require.NoError(t, testDB.UpsertFloat(ctx, model.FloatMeta{
		FloatID:         "2902746",
		ProjectName:     "Argo INDIA",
		LatestLatitude:  12.5,
		LatestLongitude: 68.3,
	}))

	ts := time.Date(2023, 5, 14, 9, 30, 0, 0, time.UTC)
	lat, lon := 12.5, 68.3
	pres, temp, sal := 10.2, 28.4, 35.1

	n, err := testDB.InsertMeasurements(ctx, []model.Measurement{
		{FloatID: "2902746", Timestamp: &ts, Latitude: &lat, Longitude: &lon, Pressure: &pres, Temperature: &temp, Salinity: &sal},
		{FloatID: "2902746", Timestamp: &ts, Latitude: &lat, Longitude: &lon, Pressure: nil, Temperature: nil, Salinity: nil},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rows, err := testDB.ExecuteQuery(ctx,
		`SELECT float_id, temperature, salinity FROM argo_measurements WHERE float_id = '2902746' ORDER BY id`)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2902746", rows[0]["float_id"])
	assert.Equal(t, 28.4, rows[0]["temperature"])
	assert.Nil(t, rows[1]["temperature"], "missing values surface as null")

	deleted, err := testDB.DeleteMeasurements(ctx, "2902746")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestExecuteQueryBadSQL(t *testing.T) {
	skipIfShort(t)

	_, err := testDB.ExecuteQuery(context.Background(), `SELECT nope FROM argo_floats`)
	assert.Error(t, err)
}
