package implementation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"deepsight-be/internal/entity"
	"deepsight-be/internal/model"
	"deepsight-be/internal/repository/specification"
	"deepsight-be/pkg/database"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pg, err := postgres.Run(ctx,
		"pgvector/pgvector:pg17",
		postgres.WithDatabase("deepsight_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &model.Facility{}, &model.SearchLog{}))
	return db
}

func vec(hot int) []float32 {
	v := make([]float32, 768)
	v[hot] = 1
	return v
}

func TestPostgresRepositories(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	t.Run("search log insert then append", func(t *testing.T) {
		repo := NewSearchLogRepository(db)

		log, created, err := repo.UpsertAppend(ctx, "device-a", "Hampi")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "Hampi", log.History)

		log, created, err = repo.UpsertAppend(ctx, "device-a", "Gingee Fort")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "Hampi, Gingee Fort", log.History)

		n, err := repo.Count(ctx, specification.ByDeviceID{DeviceID: "device-a"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		missing, err := repo.GetByDevice(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("concurrent first searches create one row", func(t *testing.T) {
		repo := NewSearchLogRepository(db)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _, err := repo.UpsertAppend(ctx, "device-race", fmt.Sprintf("q%d", i))
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		n, err := repo.Count(ctx, specification.ByDeviceID{DeviceID: "device-race"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		log, err := repo.GetByDevice(ctx, "device-race")
		require.NoError(t, err)
		assert.Len(t, entity.SplitHistory(log.History), 20)
	})

	t.Run("facility similarity search", func(t *testing.T) {
		repo := NewFacilityRepository(db)
		require.NoError(t, repo.DeleteAll(ctx))

		require.NoError(t, repo.CreateBulk(ctx, []*entity.Facility{
			{Name: "Shore Temple", FreeText: "Shore Temple in Mamallapuram, Open 6am-6pm", Embedding: vec(0)},
			{Name: "Hampi", FreeText: "Hampi in Karnataka, Open sunrise to sunset", Embedding: vec(1), Attributes: map[string]string{"fee": "40"}},
			{Name: "Unindexed", FreeText: "no vector"},
		}))

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "Shore Temple", all[0].Name)
		assert.Equal(t, "40", all[1].Attributes["fee"])

		scored, err := repo.SearchSimilar(ctx, vec(1), 3)
		require.NoError(t, err)
		require.Len(t, scored, 2)
		assert.Equal(t, "Hampi", scored[0].Facility.Name)
		assert.InDelta(t, 1.0, scored[0].Similarity, 1e-6)

		byName, err := repo.FindAll(ctx, specification.ByFacilityName{Name: "shore"})
		require.NoError(t, err)
		assert.Len(t, byName, 1)
	})
}
