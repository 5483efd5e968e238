package redis

import (
	"log"
	"sync"

	radix "github.com/mediocregopher/radix/v3"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/config"
)

var (
	client radix.Client
	once   sync.Once
)

// Init builds the shared Redis pool.
func Init(cfg *config.RedisConfig) radix.Client {
	once.Do(func() {
		size := cfg.PoolSize
		if size <= 0 {
			size = 10
		}
		pool, err := radix.NewPool("tcp", cfg.Addr, size)
		if err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		client = pool
	})
	return client
}

// Client returns the shared pool.
func Client() radix.Client {
	return client
}
