// Package cli provides the resume-matcher command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fmuoria/resume-matcher/internal/agent"
	"github.com/fmuoria/resume-matcher/internal/config"
	"github.com/fmuoria/resume-matcher/internal/logger"
)

// Version is set at build time
var Version = "dev"

// state is shared between the root command and its subcommands
type state struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string

	cfg *config.Config
}

// Execute runs the root command until it finishes or the process is signalled
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	st := &state{}

	cmd := &cobra.Command{
		Use:   "resume-matcher",
		Short: "Extract résumé fields and match skills against job descriptions",
		Long: `resume-matcher extracts the name, contact details, education and skills
from plain-text résumés, scores the skills against a job description with
TF-IDF cosine similarity and builds a knowledge graph of shared and missing
skills.

Run 'resume-matcher serve' for the HTTP API or 'resume-matcher analyze' for a
one-off analysis.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&st.configPath, "config", "c", "", "Path to config.yaml (default ~/.config/ResumeMatcher/config.yaml)")
	cmd.PersistentFlags().StringVar(&st.envFile, "env-file", ".env", "Load environment variables from this file when present")
	cmd.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&st.logFormat, "log-format", "", "Log format: json, pretty, auto")

	cmd.AddCommand(newServeCmd(st))
	cmd.AddCommand(newAnalyzeCmd(st))

	return cmd
}

// load reads configuration, applies overrides and sets up logging
func (st *state) load(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(st.envFile); err != nil {
		return err
	}

	var (
		cfg *config.Config
		err error
	)
	if st.configPath != "" {
		cfg, err = config.LoadFrom(st.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	cfg.ApplyEnv()
	if st.logLevel != "" {
		cfg.Logger.Level = st.logLevel
	}
	if st.logFormat != "" {
		cfg.Logger.Format = st.logFormat
	}

	logger.InitWithWriter(cfg.Logger, cmd.ErrOrStderr())
	logger.Debug().
		Str("generic_backend", cfg.Annotators.Generic.Backend).
		Str("skill_backend", cfg.Annotators.Skill.Backend).
		Str("addr", cfg.Server.Addr).
		Msg("configuration loaded")
	st.cfg = cfg
	return nil
}

// newAnalyzer validates configuration and loads both annotators
func (st *state) newAnalyzer(ctx context.Context) (*agent.ResumeAnalyzer, *agent.Annotators, error) {
	if err := st.cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	annotators, err := agent.BuildAnnotators(ctx, st.cfg)
	if err != nil {
		return nil, nil, err
	}

	analyzer, err := agent.New(annotators.Generic, annotators.Skill)
	if err != nil {
		annotators.Close()
		return nil, nil, err
	}

	logger.Info().
		Str("generic", annotators.Generic.ModelName()).
		Str("skill", annotators.Skill.ModelName()).
		Msg("annotators loaded")

	return analyzer, annotators, nil
}
