// Package config loads and watches the modeler configuration file.
//
// Top-level types:
//   - Config{Modeler}: the `modeler:` section of config.yaml; the `server:`
//     section is ignored here
//   - ModelerConfig: site_id, input, output, scenarios, interval,
//     server_endpoint, server_auth, buffer_size
//   - Input: source (csv|synthetic|simulate|scrape|prompt) plus per-source
//     settings; csv falls back to the simulator when the file is missing
//   - Scenario: id, label, temperature_offset, light_multiplier (default 1),
//     freeze_baseline, file; an empty list means the standard four scenarios
//   - AuthConfig: mode (apikey|bearer|none), header, key_env, token_env;
//     Key() and Token() resolve from environment variables
//
// Load(path) reads the YAML file, applies defaults, then validates enums,
// ranges and scenario uniqueness. Default() is the config used without a file.
//
// Watch(ctx, path, onChange) watches the file's directory with fsnotify and
// calls onChange with each newly parsed Config, debouncing bursts of events.
package config
