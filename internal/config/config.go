// Package config loads the JSON startup configuration: which listeners
// to bind and, if any TLS listener is configured, where to find the
// certificate/key pair.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// ListenerConfig names the optional listener endpoints this process may
// bind, each as a "host:port" string. Every entry is optional; at least
// one must be present across the whole Config or startup refuses.
type ListenerConfig struct {
	PlainTelnet    string `json:"plain_telnet,omitempty"`
	TLSTelnet      string `json:"tls_telnet,omitempty"`
	PlainWebSocket string `json:"plain_websocket,omitempty"`
	TLSWebSocket   string `json:"tls_websocket,omitempty"`
	SSH            string `json:"ssh,omitempty"`
}

// IsEmpty reports whether no listener address was configured.
func (l ListenerConfig) IsEmpty() bool {
	return l.PlainTelnet == "" && l.TLSTelnet == "" && l.PlainWebSocket == "" &&
		l.TLSWebSocket == "" && l.SSH == ""
}

// HasTLS reports whether any tls_* listener is configured, which makes
// the Tls block mandatory.
func (l ListenerConfig) HasTLS() bool {
	return l.TLSTelnet != "" || l.TLSWebSocket != ""
}

// TLSConfig points at the PEM certificate and key the TLS listeners use.
// Reloaded at runtime by tlswatch.go when either file changes on disk.
type TLSConfig struct {
	Key string `json:"key"`
	Pem string `json:"pem"`
}

// NetConfig is the "net" object of the top-level config file.
type NetConfig struct {
	Listeners ListenerConfig `json:"listeners"`
	TLS       TLSConfig      `json:"tls"`
}

// Config is the full shape of config.json.
type Config struct {
	Net NetConfig `json:"net"`
}

// Load reads and parses path, then validates it per spec.md §6: at least
// one listener must be configured, and TLS material is required iff any
// tls_* listener is present. Both failures are returned as plain errors;
// the caller (cmd/mudnet) is responsible for treating them as the fatal
// startup errors spec.md requires.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.Net.Listeners.IsEmpty() {
		return Config{}, fmt.Errorf("config: %s configures no listeners under net.listeners", path)
	}
	if cfg.Net.Listeners.HasTLS() && (cfg.Net.TLS.Key == "" || cfg.Net.TLS.Pem == "") {
		return Config{}, fmt.Errorf("config: %s configures a tls_* listener but net.tls.key/pem is incomplete", path)
	}

	return cfg, nil
}
