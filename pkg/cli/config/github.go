package config

import "github.com/urfave/cli/v3"

// GitHub holds GitHub App configuration
type GitHub struct {
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
	WebhookSecret  string `masq:"secret"`
	OIDCAudience   string
}

// Flags returns CLI flags shared by every command that downloads sources
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Required:    true,
			Destination: &c.AppID,
			Sources:     cli.EnvVars("SLIPWAY_GITHUB_APP_ID"),
		},
		&cli.IntFlag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Required:    true,
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("SLIPWAY_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "Path to GitHub App private key PEM file",
			Required:    true,
			Destination: &c.PrivateKeyPath,
			Sources:     cli.EnvVars("SLIPWAY_GITHUB_PRIVATE_KEY"),
		},
	}
}

// ServeFlags returns Flags plus the settings only the webhook server consumes
func (c *GitHub) ServeFlags() []cli.Flag {
	return append(c.Flags(),
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret",
			Required:    true,
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("SLIPWAY_GITHUB_WEBHOOK_SECRET"),
		},
		&cli.StringFlag{
			Name:        "github-oidc-audience",
			Usage:       "Expected audience of GitHub Actions ID tokens (enables the dispatch endpoint)",
			Destination: &c.OIDCAudience,
			Sources:     cli.EnvVars("SLIPWAY_GITHUB_OIDC_AUDIENCE"),
		},
	)
}
