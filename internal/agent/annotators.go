package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fmuoria/resume-matcher/internal/annotator"
	"github.com/fmuoria/resume-matcher/internal/config"
	"github.com/fmuoria/resume-matcher/internal/llm"
	"github.com/fmuoria/resume-matcher/internal/models"
)

var (
	genericLabels = []models.Label{models.LabelPerson, models.LabelEmail, models.LabelPhone, models.LabelOrg}
	skillLabels   = []models.Label{models.LabelSkill}
)

// Annotators holds the generic and skill annotators built from configuration
type Annotators struct {
	Generic annotator.Annotator
	Skill   annotator.Annotator

	closers []func() error
}

// Close releases model clients
func (a *Annotators) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildAnnotators loads both annotators. A failure is reported as
// annotator.ErrModelUnavailable.
func BuildAnnotators(ctx context.Context, cfg *config.Config) (*Annotators, error) {
	set := &Annotators{}

	generic, err := set.build(ctx, cfg, cfg.Annotators.Generic, genericLabels)
	if err != nil {
		set.Close()
		return nil, fmt.Errorf("failed to load generic annotator: %w", err)
	}
	set.Generic = generic

	skill, err := set.build(ctx, cfg, cfg.Annotators.Skill, skillLabels)
	if err != nil {
		set.Close()
		return nil, fmt.Errorf("failed to load skill annotator: %w", err)
	}
	set.Skill = skill

	return set, nil
}

func (a *Annotators) build(ctx context.Context, cfg *config.Config, ac config.AnnotatorConfig, labels []models.Label) (annotator.Annotator, error) {
	var base annotator.Annotator

	switch ac.Backend {
	case config.BackendGazetteer:
		var (
			g   *annotator.Gazetteer
			err error
		)
		if ac.GazetteerPath == "" {
			g, err = annotator.DefaultSkillGazetteer()
		} else {
			g, err = annotator.LoadGazetteer(ac.GazetteerPath)
		}
		if err != nil {
			return nil, err
		}
		base = g

	case config.BackendVertexAI:
		client, err := llm.NewVertexAIClient(ctx, llm.VertexAIConfig{
			ProjectID:       cfg.Google.Project,
			Location:        cfg.Google.Location,
			Model:           cfg.Google.Model,
			CredentialsPath: cfg.Google.CredentialsPath,
		})
		if err != nil {
			return nil, &annotator.ModelError{Model: config.BackendVertexAI, Err: err}
		}
		a.closers = append(a.closers, client.Close)
		if base, err = verifiedLLM(ctx, llm.WithRetry(client), labels, ac.Timeout); err != nil {
			return nil, err
		}

	case config.BackendOpenAI:
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		})
		if err != nil {
			return nil, &annotator.ModelError{Model: config.BackendOpenAI, Err: err}
		}
		a.closers = append(a.closers, client.Close)
		if base, err = verifiedLLM(ctx, llm.WithRetry(client), labels, ac.Timeout); err != nil {
			return nil, err
		}

	default:
		return nil, &annotator.ModelError{Model: ac.Backend, Err: fmt.Errorf("unsupported backend")}
	}

	bounded := annotator.WithTimeout(base, ac.Timeout)
	if ac.CacheSize > 0 {
		return annotator.NewCached(bounded, ac.CacheSize), nil
	}
	return bounded, nil
}

// verifiedLLM builds an LLM annotator and makes one call to it, so that a
// missing model or rejected credentials fail at startup rather than on
// every document
func verifiedLLM(ctx context.Context, gen annotator.Generator, labels []models.Label, timeout time.Duration) (*annotator.LLM, error) {
	a, err := annotator.NewLLM(gen, labels...)
	if err != nil {
		return nil, err
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := a.Verify(ctx); err != nil {
		return nil, err
	}
	return a, nil
}
