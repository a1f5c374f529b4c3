package redis_test

import (
	"context"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/biztrack/internal/prefs"
	"github.com/MrJamesThe3rd/biztrack/internal/prefs/prefstest"
	"github.com/MrJamesThe3rd/biztrack/internal/prefs/redis"
)

func TestStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx := context.Background()

	client := goredis.NewClient(&goredis.Options{Addr: addr, DB: 15})
	t.Cleanup(func() { client.Close() })

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable at %s: %v", addr, err)
	}

	prefstest.Run(t, func(t *testing.T) prefs.Store {
		require.NoError(t, client.FlushDB(ctx).Err())

		return redis.New(client)
	})
}
