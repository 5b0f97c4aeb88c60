package config

import "github.com/spf13/pflag"

// AddFlags binds command-line overrides for the replication settings.
// Defaults are the values already loaded from the environment, so a flag
// only wins when it is given.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Role, "role", c.Role, "replication role: OFF, HOST or CLIENT")
	fs.StringVar(&c.RelayURL, "relay-url", c.RelayURL, "websocket URL of the relay")
	fs.StringVar(&c.Port, "port", c.Port, "HTTP port to listen on")
	fs.StringVar(&c.SeedPath, "seed", c.SeedPath, "seed file with menus, tables and bookings")
	fs.BoolVar(&c.EmbedRelay, "embed-relay", c.EmbedRelay, "serve the relay at /ws when running as HOST")
	fs.BoolVar(&c.ResetSnapshot, "reset-snapshot", false, "delete the stored snapshot before starting as HOST")
}
