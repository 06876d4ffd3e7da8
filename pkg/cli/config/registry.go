package config

import (
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/slipway/pkg/infra/registry"
)

// Registry holds package index upload configuration. The token is injected
// at deploy time via flag or environment and lives only in process memory;
// the masq tag keeps it out of any logged copy of this struct.
type Registry struct {
	Endpoint string
	Username string
	Token    string `masq:"secret"`
}

// Flags returns CLI flags for registry configuration
func (c *Registry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "registry-endpoint",
			Usage:       "Package index upload endpoint",
			Value:       registry.DefaultEndpoint,
			Destination: &c.Endpoint,
			Sources:     cli.EnvVars("SLIPWAY_REGISTRY_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:        "registry-username",
			Usage:       "Upload username (the token marker for API tokens)",
			Value:       registry.TokenUsername,
			Destination: &c.Username,
			Sources:     cli.EnvVars("SLIPWAY_REGISTRY_USERNAME"),
		},
		&cli.StringFlag{
			Name:        "registry-token",
			Usage:       "Upload API token",
			Required:    true,
			Destination: &c.Token,
			Sources:     cli.EnvVars("SLIPWAY_REGISTRY_TOKEN"),
		},
	}
}
