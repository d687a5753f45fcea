// Package config loads the `server:` section of the firewatch config file.
//
// Top-level types:
//   - ServerConfig: grpc_port, http_port, auth, sweeps.ttl,
//     broadcast_interval, alerts
//   - AuthConfig: mode (apikey|none), key_env, header
//   - AlertRule: name, condition, scenario, severity, cooldown
//   - WebhookConfig: type (slack|teams|http), url_env
//
// Secrets (API key, webhook URLs) are never stored in the file; the config
// names the environment variables that hold them.
package config
