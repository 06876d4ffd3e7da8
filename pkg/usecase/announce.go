package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/m-mizutani/slipway/pkg/domain/model"
)

//go:embed prompts/announce_system.md
var announceSystemPrompt string

//go:embed prompts/announce_user.md
var announceUserTemplate string

// Announcer generates a short release announcement for a published run.
type Announcer struct {
	llmClient    gollem.LLMClient
	userTemplate *template.Template
}

// NewAnnouncer creates an Announcer backed by the given LLM client.
func NewAnnouncer(llmClient gollem.LLMClient) (*Announcer, error) {
	tmpl, err := template.New("announce").Parse(announceUserTemplate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse announcement template")
	}

	return &Announcer{
		llmClient:    llmClient,
		userTemplate: tmpl,
	}, nil
}

// Announce produces the announcement text for a published run.
func (a *Announcer) Announce(ctx context.Context, run *model.PublishRun) (string, error) {
	logger := ctxlog.From(ctx)

	if run.Artifact == nil {
		return "", goerr.New("run has no artifact to announce", goerr.V("run_id", run.ID))
	}

	var buf bytes.Buffer
	err := a.userTemplate.Execute(&buf, map[string]string{
		"Name":       run.Artifact.Name,
		"Version":    run.Artifact.Version,
		"Repository": run.Repository.String(),
		"Commit":     run.HeadSHA.String(),
		"Summary":    run.Artifact.Metadata.Summary,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to render announcement prompt")
	}

	session, err := a.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(announceSystemPrompt),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buf.String()))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate announcement")
	}
	if len(resp.Texts) == 0 {
		return "", goerr.New("no response from LLM")
	}

	text := strings.TrimSpace(resp.Texts[0])
	logger.Debug("Generated announcement", "run_id", run.ID, "length", len(text))

	return text, nil
}
