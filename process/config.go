package process

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config carries the externally supplied constants of the core: the
// privilege bootstrap list and the remote-execution timeout. All fields
// default so an empty environment works.
type Config struct {
	// Privileges enabled best-effort at controller construction
	Privileges []string `split_words:"true" default:"SeDebugPrivilege,SeLoadDriverPrivilege"`

	// ExecTimeout bounds synchronous in-target calls. Zero waits forever.
	ExecTimeout time.Duration `split_words:"true" default:"30s"`
}

// LoadConfig reads configuration from PROCCTL_* environment variables
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("procctl", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns the built-in defaults without consulting the
// environment.
func DefaultConfig() Config {
	return Config{
		Privileges:  []string{"SeDebugPrivilege", "SeLoadDriverPrivilege"},
		ExecTimeout: 30 * time.Second,
	}
}
