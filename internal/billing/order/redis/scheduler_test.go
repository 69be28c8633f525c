package redis_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	orderredis "garage-client-api/internal/billing/order/redis"
	"garage-client-api/internal/logger"
)

// TestSchedulerIntegration exercises the keyspace-expiry scheduler against a
// real Redis container.
func TestSchedulerIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	// A non-default DB, so the subscription must target the right keyevent
	// channel for events to arrive at all.
	client := goredis.NewClient(&goredis.Options{
		Addr: host + ":" + port.Port(),
		DB:   5,
	})
	defer client.Close()

	settled := make(chan int64, 4)
	var calls int32
	scheduler := orderredis.NewScheduler(client, "settle:client:", 500*time.Millisecond, func(orderID int64) error {
		atomic.AddInt32(&calls, 1)
		settled <- orderID
		return nil
	}, logger.NewLogger())

	scheduler.Listen()
	scheduler.Schedule(7)

	select {
	case id := <-settled:
		assert.Equal(t, int64(7), id)
	case <-time.After(10 * time.Second):
		t.Fatal("settlement callback did not fire on key expiry")
	}

	// Keys outside the scheduler's prefix are ignored
	require.NoError(t, client.Set(ctx, "unrelated:9", "1", 200*time.Millisecond).Err())
	time.Sleep(2 * time.Second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
