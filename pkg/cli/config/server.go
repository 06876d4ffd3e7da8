package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr          string
	ShutdownGrace time.Duration
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("SLIPWAY_ADDR"),
		},
		&cli.DurationFlag{
			Name:        "shutdown-grace",
			Usage:       "How long to drain in-flight requests on shutdown",
			Value:       10 * time.Second,
			Destination: &c.ShutdownGrace,
			Sources:     cli.EnvVars("SLIPWAY_SHUTDOWN_GRACE"),
		},
	}
}
