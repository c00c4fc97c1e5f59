package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect dials the snapshot store from a redis:// URL and confirms it
// answers before the match manager starts writing state to it. Callers
// treat a failure as "run without snapshots", so this returns the error
// rather than logging it.
func Connect(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
