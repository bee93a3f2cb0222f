package providers

import (
	"github.com/samber/do/v2"

	"github.com/angelarchive/archive-server/internal/auth"
	"github.com/angelarchive/archive-server/internal/config"
	"github.com/angelarchive/archive-server/internal/logger"
)

// AuthKey is the PASETO symmetric key loaded from the data directory.
type AuthKey []byte

// ProvideAuthKey loads or generates the token signing key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return nil, err
	}

	log.Info("Auth key ready", "path", cfg.Data.BasePath)
	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(key, cfg.Auth.AccessTokenDuration, cfg.Auth.SessionDuration)
}
