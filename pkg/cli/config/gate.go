package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/m-mizutani/slipway/pkg/domain/model"
	"github.com/m-mizutani/slipway/pkg/domain/types"
)

// Gate holds gate policy configuration. The policy comes either from flags
// or from a YAML file; the file wins when both are given.
type Gate struct {
	ConfigPath string
	Repository string
	Branch     string
	Events     []string
	Workflow   string
}

// Flags returns CLI flags for gate policy configuration
func (c *Gate) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gate-config",
			Usage:       "Path to gate policy YAML file",
			Destination: &c.ConfigPath,
			Sources:     cli.EnvVars("SLIPWAY_GATE_CONFIG"),
		},
		&cli.StringFlag{
			Name:        "gate-repository",
			Usage:       "Repository (owner/name) whose workflow runs may publish",
			Destination: &c.Repository,
			Sources:     cli.EnvVars("SLIPWAY_GATE_REPOSITORY"),
		},
		&cli.StringFlag{
			Name:        "gate-branch",
			Usage:       "Branch the upstream run must be on",
			Value:       string(model.DefaultBranch),
			Destination: &c.Branch,
			Sources:     cli.EnvVars("SLIPWAY_GATE_BRANCH"),
		},
		&cli.StringSliceFlag{
			Name:        "gate-event",
			Usage:       "Event kind allowed to trigger publishing (repeatable)",
			Destination: &c.Events,
			Sources:     cli.EnvVars("SLIPWAY_GATE_EVENT"),
		},
		&cli.StringFlag{
			Name:        "gate-workflow",
			Usage:       "Restrict publishing to one upstream workflow name",
			Destination: &c.Workflow,
			Sources:     cli.EnvVars("SLIPWAY_GATE_WORKFLOW"),
		},
	}
}

// Policy builds the gate policy from the file or the flags.
func (c *Gate) Policy() (*model.GatePolicy, error) {
	if c.ConfigPath != "" {
		return loadPolicyFile(c.ConfigPath)
	}

	policy := &model.GatePolicy{
		Repository: types.RepoID(c.Repository),
		Branch:     types.BranchName(c.Branch),
		Events:     model.DefaultEvents(),
		Workflow:   c.Workflow,
	}
	if len(c.Events) > 0 {
		policy.Events = make([]types.EventKind, 0, len(c.Events))
		for _, e := range c.Events {
			policy.Events = append(policy.Events, types.EventKind(e))
		}
	}

	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}

func loadPolicyFile(path string) (*model.GatePolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read gate policy file", goerr.V("path", path))
	}

	var policy model.GatePolicy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, goerr.Wrap(err, "failed to parse gate policy file", goerr.V("path", path))
	}
	if policy.Branch == "" {
		policy.Branch = model.DefaultBranch
	}
	if len(policy.Events) == 0 {
		policy.Events = model.DefaultEvents()
	}

	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &policy, nil
}
