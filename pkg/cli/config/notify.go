package config

import "github.com/urfave/cli/v3"

// Notify holds outcome notification configuration. Each sink is enabled by
// setting its destination.
type Notify struct {
	SlackWebhookURL string `masq:"secret"`
	SentryDSN       string
}

// Flags returns CLI flags for notification configuration
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook for run outcomes",
			Destination: &c.SlackWebhookURL,
			Sources:     cli.EnvVars("SLIPWAY_SLACK_WEBHOOK_URL"),
		},
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for failed run reports",
			Destination: &c.SentryDSN,
			Sources:     cli.EnvVars("SLIPWAY_SENTRY_DSN"),
		},
	}
}
