package config

import "strconv"

const (
	TokenStoreFile   = "file"
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

type StoreConfig interface {
	GetTokenStoreBackend() string
	GetTokenStoreFile() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
}

type Store struct {
	src *source
}

var _ StoreConfig = Store{}

func (s Store) GetTokenStoreBackend() string {
	return s.src.get("EOSTRE_TOKEN_STORE", TokenStoreFile)
}

// GetTokenStoreFile defaults to session.json inside the data folder.
func (s Store) GetTokenStoreFile() string {
	return s.src.get("EOSTRE_TOKEN_FILE", EnvVars{src: s.src}.GetDataFolder()+"/session.json")
}

func (s Store) GetRedisAddr() string {
	return s.src.get("EOSTRE_REDIS_ADDR", "localhost:6379")
}

func (s Store) GetRedisPassword() string {
	return s.src.get("EOSTRE_REDIS_PASSWORD", "")
}

func (s Store) GetRedisDB() int {
	db, err := strconv.Atoi(s.src.get("EOSTRE_REDIS_DB", "0"))
	if err != nil {
		return 0
	}
	return db
}

func (s Store) GetRedisKeyPrefix() string {
	return s.src.get("EOSTRE_REDIS_PREFIX", "eostre:")
}
