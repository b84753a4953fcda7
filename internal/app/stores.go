package app

import (
	"context"
	"fmt"
	"os"

	"github.com/agbs2k8/eostre/internal/config"
	"github.com/agbs2k8/eostre/token"
	"github.com/agbs2k8/eostre/tokenstore"
	tokenrepofake "github.com/agbs2k8/eostre/tokenstore/repofake"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func noopClose() error { return nil }

// NewTokenStore opens the configured token persistence backend. The returned
// func releases it.
func NewTokenStore(ctx context.Context, cfg config.StoreConfig) (tokenstore.Repo, func() error, error) {
	switch backend := cfg.GetTokenStoreBackend(); backend {
	case config.TokenStoreFile:
		log.Debug().Str("path", cfg.GetTokenStoreFile()).Msg("using file token store")
		return tokenstore.NewFileRepo(cfg.GetTokenStoreFile()), noopClose, nil

	case config.TokenStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("app: failed to connect to redis at %s: %w", cfg.GetRedisAddr(), err)
		}
		log.Debug().Str("addr", cfg.GetRedisAddr()).Msg("using redis token store")
		return tokenstore.NewRedisRepo(client, cfg.GetRedisKeyPrefix()), client.Close, nil

	case config.TokenStoreMemory:
		return tokenrepofake.NewFakeTokenRepo(), noopClose, nil

	default:
		return nil, nil, fmt.Errorf("app: unknown token store %q", backend)
	}
}

// NewDecoder returns a signature checking decoder when a verification key is
// configured and the unverified decoder otherwise.
func NewDecoder(cfg config.SessionConfig) (token.Decoder, error) {
	path := cfg.GetVerifyKeyFile()
	if path == "" {
		return token.NewDecoder(), nil
	}

	pemData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("app: failed to read verification key: %w", err)
	}
	key, err := keysFromPEM(string(pemData))
	if err != nil {
		return nil, err
	}
	return token.NewOIDCVerifier(cfg.GetTokenIssuer(), key), nil
}
