package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	RemoteURL  string `envconfig:"E2E_REMOTE_URL"`
	UploadURL  string `envconfig:"E2E_UPLOAD_URL"`
	Collection string `envconfig:"E2E_COLLECTION" default:"e2e-messages"`
	// E2E_DEBUG_JSON dumps every snapshot received as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
