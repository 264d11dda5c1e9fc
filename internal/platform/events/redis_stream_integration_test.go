//go:build integration

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	adoptiondomain "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	platformredis "github.com/Apurer/pet-adoption-api/internal/platform/redis"
)

func setupRedisContainer(t *testing.T) (string, func()) {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, port.Port()), func() { container.Terminate(ctx) }
}

func TestRedisStreamPublisher_AppendsEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	addr, cleanup := setupRedisContainer(t)
	defer cleanup()

	ctx := context.Background()
	rdb, err := platformredis.Connect(ctx, platformredis.Config{Addr: addr})
	require.NoError(t, err)
	defer rdb.Close()

	publisher := NewRedisStreamPublisher(rdb, WithStream("test-events"), WithMaxLen(100))
	at := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	adoption := &adoptiondomain.Adoption{ID: "a1", PetID: "p1", ApplicantID: "u1", Status: adoptiondomain.StatusApproved}
	require.NoError(t, publisher.Publish(ctx,
		adoptiondomain.NewApplicantNotified(adoption, at),
		adoptiondomain.NewApplicantNotified(adoption, at.Add(time.Second)),
	))

	entries, err := rdb.XRange(ctx, "test-events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "adoptions.applicant.notified", entries[0].Values["event"])
	assert.Equal(t, "2024-07-01T12:00:00Z", entries[0].Values["occurred_at"])

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["payload"].(string)), &payload))
	assert.Equal(t, "a1", payload["AdoptionID"])
	assert.Equal(t, "Approved", payload["Status"])
}
