package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/slipway/pkg/cli/config"
	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/domain/types"
	"github.com/m-mizutani/slipway/pkg/infra/firestore"
)

func cmdRuns() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Inspect recorded publish runs",
		Commands: []*cli.Command{
			cmdRunsList(),
			cmdRunsGet(),
		},
	}
}

func cmdRunsList() *cli.Command {
	var (
		fsCfg config.Firestore
		limit int64
	)

	flags := append(fsCfg.Flags(),
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum number of runs to list",
			Value:       20,
			Destination: &limit,
		},
	)

	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List recent publish runs, newest first",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := openRunRepository(ctx, &fsCfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			runs, err := repo.List(ctx, int(limit))
			if err != nil {
				return err
			}

			if len(runs) == 0 {
				fmt.Println("No publish runs recorded.")
				return nil
			}

			bold := color.New(color.Bold)
			_, _ = bold.Println("Publish runs:")
			fmt.Println()

			for _, r := range runs {
				pkg := "-"
				if r.Artifact != nil {
					pkg = fmt.Sprintf("%s %s", r.Artifact.Name, r.Artifact.Version)
				}
				fmt.Printf("  %-27s %-12s %-28s %s\n",
					r.ID, colorStatus(r.Status), pkg, r.CreatedAt.Format(time.RFC3339))
			}
			fmt.Println()
			return nil
		},
	}
}

func cmdRunsGet() *cli.Command {
	var fsCfg config.Firestore

	return &cli.Command{
		Name:      "get",
		Usage:     "Show one publish run in detail",
		ArgsUsage: "<run-id>",
		Flags:     fsCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return goerr.New("run ID argument is required")
			}

			repo, err := openRunRepository(ctx, &fsCfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			run, err := repo.Get(ctx, types.RunID(id))
			if err != nil {
				return err
			}
			if run == nil {
				return goerr.New("run not found", goerr.V("run_id", id))
			}

			printRun(run)
			return nil
		},
	}
}

func openRunRepository(ctx context.Context, cfg *config.Firestore) (*firestore.Client, error) {
	if cfg.ProjectID == "" {
		return nil, goerr.New("run inspection requires Firestore (set --firestore-project-id)")
	}
	return firestore.New(ctx, cfg.ProjectID, cfg.Collection)
}

func printRun(run *model.PublishRun) {
	bold := color.New(color.Bold)
	_, _ = bold.Printf("Run: %s\n", run.ID)
	fmt.Printf("  Status:     %s\n", colorStatus(run.Status))
	fmt.Printf("  Repository: %s\n", run.Repository)
	fmt.Printf("  Branch:     %s\n", run.HeadBranch)
	fmt.Printf("  Commit:     %s\n", run.HeadSHA)
	if run.Workflow != "" {
		fmt.Printf("  Workflow:   %s\n", run.Workflow)
	}
	fmt.Printf("  Created:    %s\n", run.CreatedAt.Format(time.RFC3339))

	switch run.Status {
	case types.RunStatusSkipped:
		fmt.Println()
		color.Yellow("  Skipped:")
		for _, reason := range run.SkipReasons {
			fmt.Printf("    - %s\n", reason)
		}
	case types.RunStatusFailed:
		fmt.Println()
		color.Red("  Failed at %s (%s)", run.FailedStep, run.FailureKind)
		if run.Error != "" {
			fmt.Printf("    %s\n", run.Error)
		}
	case types.RunStatusPublished:
		if run.Artifact != nil {
			fmt.Println()
			color.Green("  Published %s %s", run.Artifact.Name, run.Artifact.Version)
			fmt.Printf("    File:   %s\n", run.Artifact.FileName)
			fmt.Printf("    SHA256: %s\n", run.Artifact.SHA256)
		}
		if run.ArchiveURL != "" {
			fmt.Printf("    Copy:   %s\n", run.ArchiveURL)
		}
	}

	if len(run.Steps) > 0 {
		fmt.Println()
		_, _ = bold.Println("  Steps:")
		for _, s := range run.Steps {
			duration := s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond)
			if s.OK {
				color.Green("    ✓ %s (%s)", s.Name, duration)
			} else {
				color.Red("    ✗ %s (%s): %s", s.Name, duration, s.Detail)
			}
		}
	}
	fmt.Println()
}

func colorStatus(status types.RunStatus) string {
	switch status {
	case types.RunStatusPublished:
		return color.GreenString(string(status))
	case types.RunStatusFailed:
		return color.RedString(string(status))
	case types.RunStatusSkipped:
		return color.YellowString(string(status))
	case types.RunStatusRunning:
		return color.CyanString(string(status))
	default:
		return string(status)
	}
}
