package config

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis connects to the Redis instance named by REDIS_URL. Redis
// only backs the geocoder cache, so a missing REDIS_URL is not an error:
// the caller gets a nil client and skips caching.
func ConnectRedis() (*redis.Client, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		log.Println("REDIS_URL not set, geocoder cache disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Error parsing Redis URL: %v", err)
		return nil, err
	}
	client := redis.NewClient(opt)

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("Error pinging Redis: %v", err)
		return nil, err
	}

	log.Println("Redis connection established")
	return client, nil
}
