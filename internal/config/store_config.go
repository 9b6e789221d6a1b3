package config

import (
	"os"
	"strconv"
)

// StoreConfig points at the external stores: Redis for session state,
// PostgreSQL for users and posts, Elasticsearch for the search index.
type StoreConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetDatabaseURL() string
	GetElasticsearchAddr() string
	GetSearchIndexName() string
}

type Stores struct{}

var _ StoreConfig = Stores{}

func (Stores) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Stores) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Stores) GetRedisDB() int {
	if v, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		return v
	}
	return 0
}

func (Stores) GetDatabaseURL() string {
	return GetEnv("DATABASE_URL", "postgres://localhost:5432/blog?sslmode=disable")
}

func (Stores) GetElasticsearchAddr() string {
	return GetEnv("ELASTICSEARCH_ADDR", "http://localhost:9200")
}

func (Stores) GetSearchIndexName() string {
	return GetEnv("SEARCH_INDEX", "posts")
}
