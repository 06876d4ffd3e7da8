package config

import "github.com/urfave/cli/v3"

// Store holds artifact archive configuration. Without a bucket no archive
// copy is kept.
type Store struct {
	Bucket string
	Prefix string
}

// Flags returns CLI flags for artifact archive configuration
func (c *Store) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Cloud Storage bucket for published artifact copies",
			Destination: &c.Bucket,
			Sources:     cli.EnvVars("SLIPWAY_ARCHIVE_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "archive-prefix",
			Usage:       "Object name prefix inside the archive bucket",
			Value:       "artifacts",
			Destination: &c.Prefix,
			Sources:     cli.EnvVars("SLIPWAY_ARCHIVE_PREFIX"),
		},
	}
}
