// Package config loads venvup configuration.
//
// Two layers exist, merged with flags by the CLI:
//
//   - Project config: venvup.yaml / venvup.yml / venvup.json, discovered
//     by walking up from the working directory the way editors discover
//     devcontainer.json. The JSON variant accepts JSONC (comments and
//     trailing commas) since that is what people paste from editors.
//   - User config: ~/.config/venvup/config.toml, host-wide defaults
//     such as the preferred interpreter or a private index URL.
//
// Precedence, highest first: command-line flags, project config, user
// config, built-in defaults. The package only loads and validates;
// merging with flags happens in the cli package where the flags live.
package config
