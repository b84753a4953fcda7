package app

import (
	"crypto"
	"fmt"
	"os"

	"github.com/agbs2k8/eostre/authstub"
	"github.com/agbs2k8/eostre/internal/config"
	"github.com/agbs2k8/eostre/token/keys"
	refreshrepofake "github.com/agbs2k8/eostre/token/refresh/repofake"
	fakeuserrepo "github.com/agbs2k8/eostre/users/repofake"
	"github.com/rs/zerolog/log"
)

const stubKeyID = "eostre-dev"

func keysFromPEM(pemData string) (crypto.PublicKey, error) {
	key, err := keys.LoadPublicKeyFromPEM(pemData)
	if err != nil {
		return nil, fmt.Errorf("app: failed to parse verification key: %w", err)
	}
	return key, nil
}

// NewSigner signs with the RSA key in the configured key file, or with the
// HMAC secret when there is none.
func NewSigner(cfg config.StubConfig) (keys.Signer, error) {
	path := cfg.GetSigningKeyFile()
	if path == "" {
		return keys.NewHMACSigner(cfg.GetSigningSecret()), nil
	}

	pemData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("app: failed to read signing key: %w", err)
	}
	kp, err := keys.LoadKeyPairFromPEM(stubKeyID, string(pemData))
	if err != nil {
		return nil, fmt.Errorf("app: failed to parse signing key: %w", err)
	}
	return keys.NewKeyPairSigner(kp), nil
}

// NewStubServer builds the development auth backend with in-memory
// repositories and the seed user.
func NewStubServer(cfg config.Config) (*authstub.Server, error) {
	signer, err := NewSigner(cfg)
	if err != nil {
		return nil, err
	}

	repos := authstub.Repos{
		Users:   fakeuserrepo.NewFakeUserRepo(),
		Refresh: refreshrepofake.NewFakeRefreshTokenRepo(),
	}
	seeded, err := authstub.Seed(repos.Users, cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Str("username", seeded.Name).Msg("seed user ready")

	return authstub.New(cfg, repos, signer)
}
