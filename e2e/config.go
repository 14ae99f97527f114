package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_RELAY_GRPC_ADDR points at a running relay, the suite is skipped when empty
	RelayGRPCAddr string `envconfig:"E2E_RELAY_GRPC_ADDR"`
	RelayWSURL    string `envconfig:"E2E_RELAY_WS_URL" default:"ws://localhost:8080/socket"`
	// E2E_DEBUG_JSON allows dumping full gRPC request/response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
