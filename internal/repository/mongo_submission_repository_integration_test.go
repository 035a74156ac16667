//go:build integration

package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stemsi/cyberassess-backend/internal/model"
)

func startMongo(t *testing.T, ctx context.Context) *mongo.Database {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start mongo: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017/tcp")
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(fmt.Sprintf("mongodb://%s:%s", host, port.Port())))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	return client.Database("assessment_test")
}

func TestMongoSubmissionRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := startMongo(t, ctx)
	repo := NewMongoSubmissionRepository(db, 5*time.Second)
	require.NoError(t, repo.EnsureIndexes(ctx))

	s := sampleSubmission()
	require.NoError(t, repo.Insert(ctx, s))
	require.NotEmpty(t, s.ID)

	dup := sampleSubmission()
	err := repo.Insert(ctx, dup)
	assert.True(t, IsConflict(err), "second insert of the same fingerprint must conflict, got %v", err)

	found, err := repo.FindByFingerprint(ctx, s.Fingerprint())
	require.NoError(t, err)
	assert.Equal(t, s.ID, found.ID)
	assert.Equal(t, s.Answers, found.Answers)

	latest, err := repo.FindLatestByIdentity(ctx, "ana@example.com", "prod-erp")
	require.NoError(t, err)
	assert.Equal(t, s.ID, latest.ID)

	st, err := repo.Statistics(ctx, model.ListAssessmentsQuery{Email: "ANA"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.TotalAssessments)
	assert.Equal(t, 80, st.MaxScore)

	ok, err := repo.Delete(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.GetByID(ctx, "zzz")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestMongoConcurrentIdenticalInsertsConverge(t *testing.T) {
	ctx := context.Background()
	db := startMongo(t, ctx)
	repo := NewMongoSubmissionRepository(db, 5*time.Second)
	require.NoError(t, repo.EnsureIndexes(ctx))

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Insert(ctx, sampleSubmission())
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if IsConflict(err) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, writers-1, conflicts)

	n, err := repo.Count(ctx, model.ListAssessmentsQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
