package db

import (
	"context"
	"testing"
	"time"
)

// TestNewRedisClient tests client initialization
func TestNewRedisClient(t *testing.T) {
	tests := []struct {
		name   string
		config RedisConfig
	}{
		{
			name: "default config",
			config: RedisConfig{
				Host: "localhost",
				Port: 6379,
			},
		},
		{
			name: "custom config with all fields",
			config: RedisConfig{
				Host:         "redis.example.com",
				Port:         6380,
				Password:     "secret",
				DB:           1,
				PoolSize:     20,
				MinIdleConns: 10,
				DialTimeout:  10 * time.Second,
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 5 * time.Second,
			},
		},
		{
			name:   "empty config uses defaults",
			config: RedisConfig{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewRedisClient(tt.config)

			if client == nil {
				t.Fatal("Expected non-nil client")
			}
			if client.client == nil {
				t.Error("Expected non-nil underlying Redis client")
			}
			if client.GetClient() == nil {
				t.Error("Expected GetClient to expose the underlying client")
			}
		})
	}
}

// TestDefaultRedisConfig tests default configuration
func TestDefaultRedisConfig(t *testing.T) {
	config := DefaultRedisConfig()

	if config.Host != "localhost" {
		t.Errorf("Expected default host 'localhost', got %s", config.Host)
	}
	if config.Port != 6379 {
		t.Errorf("Expected default port 6379, got %d", config.Port)
	}
	if config.PoolSize != 10 {
		t.Errorf("Expected default pool size 10, got %d", config.PoolSize)
	}
	if config.MinIdleConns != 5 {
		t.Errorf("Expected default min idle conns 5, got %d", config.MinIdleConns)
	}

	t.Log("✅ Default config has correct values")
}

// TestRedisClient_Ping tests ping functionality
func TestRedisClient_Ping(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	client := NewRedisClient(DefaultRedisConfig())
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	t.Log("✅ Ping successful")
}
