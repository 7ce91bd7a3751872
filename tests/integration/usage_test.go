package integration

import (
	"context"
	"testing"

	"github.com/formgate/formgate-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsage_Integration_DailyCounterResetsAcrossDayBoundary(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	ctx := context.Background()
	fixtures := testutil.NewFixtures(tdb.DB)
	user := fixtures.CreateUser(t)
	svcs := newDeliveryServices(t, tdb)

	for i := 0; i < 2; i++ {
		_, err := svcs.usage.Increment(ctx, user.ID)
		require.NoError(t, err)
	}

	usage, err := svcs.usage.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, usage.TotalRequests)
	assert.Equal(t, 2, usage.RequestsToday)

	// age the row so the next increment lands on a new calendar day
	_, err = tdb.DB.Pool.Exec(ctx, `
		UPDATE user_usage SET last_request_at = NOW() - interval '1 day' WHERE user_id = $1
	`, user.ID)
	require.NoError(t, err)

	usage, err = svcs.usage.Increment(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, usage.TotalRequests, "lifetime counter keeps growing")
	assert.Equal(t, 1, usage.RequestsToday, "daily counter restarts at the boundary")

	usage, err = svcs.usage.Increment(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, usage.TotalRequests)
	assert.Equal(t, 2, usage.RequestsToday)
}
