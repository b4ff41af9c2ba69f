// Package agent exposes the résumé analysis operations over a pair of
// annotators.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fmuoria/resume-matcher/internal/annotator"
	"github.com/fmuoria/resume-matcher/internal/extraction"
	"github.com/fmuoria/resume-matcher/internal/graph"
	"github.com/fmuoria/resume-matcher/internal/logger"
	"github.com/fmuoria/resume-matcher/internal/models"
	"github.com/fmuoria/resume-matcher/internal/scoring"
)

// ResumeAnalyzer extracts résumé fields and compares skills with a job description.
// It holds only read-only collaborators and is safe for concurrent use.
type ResumeAnalyzer struct {
	fields    *extraction.FieldExtractor
	education *extraction.EducationExtractor
	skills    *extraction.SkillExtractor
	scorer    *scoring.Scorer
	graphs    *graph.Builder
}

// New creates an analyzer. generic recognizes PERSON, EMAIL, PHONE and ORG
// entities; skill recognizes SKILL entities.
func New(generic, skill annotator.Annotator) (*ResumeAnalyzer, error) {
	if generic == nil {
		return nil, &annotator.ModelError{Model: "generic", Err: fmt.Errorf("no annotator configured")}
	}
	if skill == nil {
		return nil, &annotator.ModelError{Model: "skill", Err: fmt.Errorf("no annotator configured")}
	}

	skills := extraction.NewSkillExtractor(skill)

	return &ResumeAnalyzer{
		fields:    extraction.NewFieldExtractor(generic),
		education: extraction.NewEducationExtractor(generic),
		skills:    skills,
		scorer:    scoring.NewScorer(),
		graphs:    graph.NewBuilder(skills),
	}, nil
}

// ExtractFields returns the name, email and phone found in a résumé
func (a *ResumeAnalyzer) ExtractFields(ctx context.Context, text string) models.ExtractedFields {
	return a.fields.Extract(ctx, text)
}

// ExtractEducation returns the educational institutions named in a résumé
func (a *ResumeAnalyzer) ExtractEducation(ctx context.Context, text string) []string {
	return a.education.Extract(ctx, text)
}

// ExtractSkills returns the lower-cased skills found in text
func (a *ResumeAnalyzer) ExtractSkills(ctx context.Context, text string) []string {
	return a.skills.Extract(ctx, text)
}

// Compare scores skills against a job description
func (a *ResumeAnalyzer) Compare(jobDescription string, skills []string) float64 {
	return a.scorer.Score(jobDescription, skills)
}

// BuildKnowledgeGraph relates résumé skills to the skills of a job description
func (a *ResumeAnalyzer) BuildKnowledgeGraph(ctx context.Context, jobDescription string, skills []string) models.KnowledgeGraph {
	return a.graphs.Build(ctx, jobDescription, skills)
}

// Analyze runs extraction, comparison and graph building for one résumé.
// The résumé and the job description are annotated concurrently. An empty
// job description yields a zero score and a graph of résumé skills only.
func (a *ResumeAnalyzer) Analyze(ctx context.Context, resume, jobDescription string) (models.AnalysisResult, error) {
	requestID := logger.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = logger.WithRequestID(ctx, requestID)
	}
	start := time.Now()

	result := models.AnalysisResult{
		RequestID:         requestID,
		HasJobDescription: strings.TrimSpace(jobDescription) != "",
	}
	jobSkills := make([]string, 0)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result.Fields = a.fields.Extract(gctx, resume)
		result.Education = a.education.Extract(gctx, resume)
		result.Skills = a.skills.Extract(gctx, resume)
		return gctx.Err()
	})
	if result.HasJobDescription {
		g.Go(func() error {
			jobSkills = a.skills.Extract(gctx, strings.ToLower(jobDescription))
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("analysis interrupted: %w", err)
	}

	result.JobSkills = jobSkills
	result.SkillFrequencies = extraction.Frequencies(result.Skills)
	if result.HasJobDescription {
		result.Score = a.scorer.Score(jobDescription, result.Skills)
		result.ScorePercent = scoring.Percent(result.Score)
	}
	result.Graph = graph.Build(result.Skills, jobSkills)
	result.Timestamp = time.Now().Format(time.RFC3339)

	logger.Ctx(ctx).Info().
		Int("skills", len(result.Skills)).
		Int("job_skills", len(jobSkills)).
		Float64("score", result.ScorePercent).
		Dur("elapsed", time.Since(start)).
		Msg("analysis complete")

	return result, nil
}
