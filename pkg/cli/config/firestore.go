package config

import "github.com/urfave/cli/v3"

// Firestore holds run record storage configuration. Without a project ID
// the run history stays in process memory.
type Firestore struct {
	ProjectID  string
	Collection string
}

// Flags returns CLI flags for Firestore configuration
func (c *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project for run records (empty keeps records in memory)",
			Destination: &c.ProjectID,
			Sources:     cli.EnvVars("SLIPWAY_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Usage:       "Firestore collection for run records",
			Value:       "publish_runs",
			Destination: &c.Collection,
			Sources:     cli.EnvVars("SLIPWAY_FIRESTORE_COLLECTION"),
		},
	}
}
