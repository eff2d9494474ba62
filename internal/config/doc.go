// Package config loads the bot's TOML configuration.
//
// Load applies Default, decodes the file if it exists, then normalizes
// values (path expansion, environment fallbacks, clamping) and validates
// the result. CreateSample writes the embedded sample file that
// `musicbot config init` installs.
package config
