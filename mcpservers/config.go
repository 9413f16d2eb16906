package mcpservers

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Transport identifies how the server process is reached.
type Transport string

const (
	// TransportStdio runs the server as a child process and speaks
	// JSON-RPC over its stdin/stdout pipes.
	TransportStdio Transport = "stdio"
)

// ServerConfig describes how to launch and reach one tool server.
// An empty Transport defaults to stdio.
type ServerConfig struct {
	Command   string            `json:"command" yaml:"command" validate:"required"`
	Args      []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env       map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Transport Transport         `json:"transport,omitempty" yaml:"transport,omitempty"`
}

// Validate checks the configuration before any process is spawned.
func (c *ServerConfig) Validate() error {
	if c.Transport != "" && c.Transport != TransportStdio {
		return errors.WithMessagef(ErrUnsupportedTransport, "transport %q", c.Transport)
	}
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.WithMessage(ErrInvalidConfig, err.Error())
	}
	return nil
}

type serversFile struct {
	Servers map[string]ServerConfig `yaml:"servers"`
}

// LoadServers reads the named YAML file. A missing file is not an error
// and yields an empty set.
func LoadServers(path string) (map[string]ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]ServerConfig{}, nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	var f serversFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	if f.Servers == nil {
		f.Servers = map[string]ServerConfig{}
	}
	return f.Servers, nil
}

// SaveServers writes the server set to the named YAML file atomically,
// via a temp file renamed into place.
func SaveServers(path string, servers map[string]ServerConfig) error {
	data, err := yaml.Marshal(serversFile{Servers: servers})
	if err != nil {
		return errors.Wrap(err, "failed to marshal servers")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "failed to rename into %s", path)
	}
	return nil
}
