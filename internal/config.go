package internal

import (
	"fmt"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel        string        `env:"LOG_LEVEL,default=INFO" validate:"required"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true" validate:"required"`
	HistoryKey      string        `env:"HISTORY_KEY,default=chat:history" validate:"required"`
	RemoteURL       string        `env:"REMOTE_URL" validate:"omitempty,url"`
	UploadURL       string        `env:"UPLOAD_URL" validate:"required_with=RemoteURL,omitempty,url"`
	Collection      string        `env:"COLLECTION,default=messages" validate:"required"`
	IdentityMode    string        `env:"IDENTITY_MODE,default=name" validate:"oneof=name account"`
	ChatName        string        `env:"CHAT_NAME" validate:"omitempty,max=64"`
	SendTimeout     time.Duration `env:"SEND_TIMEOUT,default=10s" validate:"gt=0"`
	SinkTimeout     time.Duration `env:"SINK_TIMEOUT,default=2s" validate:"gt=0"`
	EventBufferSize int           `env:"EVENT_BUFFER_SIZE,default=16" validate:"gte=1"`
	MaxAttachmentMb int           `env:"MAX_ATTACHMENT_MB,default=10" validate:"gte=1"`
	DebugPort       int           `env:"DEBUG_PORT" validate:"omitempty,min=1,max=65535"`
}

// Local tells whether no remote endpoint is configured and the in-process log must be used.
func (c Config) Local() bool {
	return c.RemoteURL == ""
}

// LoadConfig reads the optional dotenv files then the environment.
// Variables already set in the environment win over the files.
func LoadConfig(files ...string) (Config, error) {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return Config{}, fmt.Errorf("dotenv error: %w", err)
		}
	}

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}
