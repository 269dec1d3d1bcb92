package app

import (
	"fmt"
	"log/slog"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/jwtx"
)

// InitAuthKeys generates the signing keys for this process. Each key gets a
// random kid and only lives in memory, so every token issued before a restart
// stops verifying.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyRing, error) {
	keys, err := jwtx.GenerateKeyRing(cfg.Algorithm, cfg.NumKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing keys: %w", err)
	}

	logger.Info("generated ephemeral signing keys",
		"algorithm", keys.Algorithm(),
		"num_keys", keys.Len(),
		"issuer", cfg.Issuer,
	)
	logger.Warn("tokens issued before this start no longer verify")

	return keys, nil
}
