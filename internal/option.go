package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	configFile string
	config     *Config
	logOutput  io.Writer
	version    string
}

// WithConfigFile loads the configuration from path. Serve reloads it before
// every build.
func WithConfigFile(path string) Option {
	return func(a *application) {
		a.configFile = path
	}
}

// WithConfig sets the application configuration. Relative paths resolve
// against the working directory. WithConfigFile takes precedence.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogOutput sets where logs are written (stderr by default).
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}
