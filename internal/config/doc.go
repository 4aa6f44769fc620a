// Package config loads ckeyscan configuration from local and global YAML
// files and CKEYSCAN_* environment variables. It is internal; CLI code maps
// flags, environment and files into engine configuration.
package config
