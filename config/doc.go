// Package config handles loading and parsing of configuration from a YAML
// file, environment variables, and command-line overrides. It defines the
// application configuration structure including the listen address, the
// mirror destination list, the attempt timeout, and the default fallback
// response. Destination URLs are deliberately not validated here: a
// malformed destination only excludes itself at startup, it never fails
// the whole configuration.
package config
