package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/resume-matcher/internal/annotator"
	"github.com/fmuoria/resume-matcher/internal/config"
	"github.com/fmuoria/resume-matcher/internal/logger"
	"github.com/fmuoria/resume-matcher/internal/models"
	"github.com/fmuoria/resume-matcher/internal/scoring"
)

// cannedAnnotator returns fixed entities for every document
type cannedAnnotator struct {
	entities []models.EntityCandidate
}

func (c cannedAnnotator) Extract(ctx context.Context, text string) ([]models.EntityCandidate, error) {
	out := make([]models.EntityCandidate, len(c.entities))
	copy(out, c.entities)
	return out, nil
}

func (c cannedAnnotator) ModelName() string {
	return "canned"
}

const (
	testResume = "Jane Roe\njane@roe.dev | 555-010-2030\nPython and SQL developer, Delta University graduate."
	testJD     = "Looking for a PYTHON engineer who knows Docker."
)

func newTestAnalyzer(t *testing.T) *ResumeAnalyzer {
	t.Helper()

	skills, err := annotator.NewGazetteer(annotator.GazetteerFile{
		Name: "test-skills",
		Entities: []annotator.GazetteerGroup{
			{Label: models.LabelSkill, Terms: []string{"python", "sql", "docker"}},
		},
	})
	require.NoError(t, err)

	generic := cannedAnnotator{entities: []models.EntityCandidate{
		{Text: "Acme Corp", Label: models.LabelOrg, Position: 90},
		{Text: "Delta University", Label: models.LabelOrg, Position: 60},
		{Text: "Jane Roe", Label: models.LabelPerson, Position: 0},
	}}

	a, err := New(generic, skills)
	require.NoError(t, err)
	return a
}

func TestNewRequiresBothAnnotators(t *testing.T) {
	_, err := New(nil, cannedAnnotator{})
	assert.ErrorIs(t, err, annotator.ErrModelUnavailable)

	_, err = New(cannedAnnotator{}, nil)
	assert.ErrorIs(t, err, annotator.ErrModelUnavailable)

	var modelErr *annotator.ModelError
	require.ErrorAs(t, err, &modelErr)
	assert.Equal(t, "skill", modelErr.Model)
}

func TestExposedOperations(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx := context.Background()

	fields := a.ExtractFields(ctx, testResume)
	assert.Equal(t, "Jane Roe", models.Deref(fields.Name, ""))
	assert.Equal(t, "jane@roe.dev", models.Deref(fields.Email, ""))
	assert.Equal(t, "555-010-2030", models.Deref(fields.Phone, ""))

	assert.Equal(t, []string{"Delta University"}, a.ExtractEducation(ctx, testResume))

	skills := a.ExtractSkills(ctx, testResume)
	assert.Equal(t, []string{"python", "sql"}, skills)

	score := a.Compare(testJD, skills)
	assert.Greater(t, score, 0.0)
	assert.Less(t, score, 1.0)
	assert.Equal(t, 0.0, a.Compare(testJD, nil))

	g := a.BuildKnowledgeGraph(ctx, testJD, skills)
	assert.Equal(t, []string{"python"}, g.MatchedSkills())
	assert.Equal(t, []string{"python", "sql", "docker"}, g.SkillIDs())
}

func TestAnalyze(t *testing.T) {
	a := newTestAnalyzer(t)

	result, err := a.Analyze(context.Background(), testResume, testJD)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RequestID)
	assert.NotEmpty(t, result.Timestamp)
	assert.True(t, result.HasJobDescription)
	assert.Equal(t, "Jane Roe", models.Deref(result.Fields.Name, ""))
	assert.Equal(t, []string{"Delta University"}, result.Education)
	assert.Equal(t, []string{"python", "sql"}, result.Skills)
	assert.Equal(t, []string{"python", "docker"}, result.JobSkills)
	assert.Equal(t, []models.SkillCount{{Skill: "python", Count: 1}, {Skill: "sql", Count: 1}}, result.SkillFrequencies)

	assert.Equal(t, a.Compare(testJD, result.Skills), result.Score)
	assert.Equal(t, scoring.Percent(result.Score), result.ScorePercent)

	stats := result.Graph.Stats()
	assert.Equal(t, 5, stats.TotalNodes)
	assert.Equal(t, 4, stats.TotalEdges)
	assert.Equal(t, 2, stats.MatchedEdges)
}

func TestAnalyzeWithoutJobDescription(t *testing.T) {
	a := newTestAnalyzer(t)

	result, err := a.Analyze(context.Background(), testResume, "   ")
	require.NoError(t, err)

	assert.False(t, result.HasJobDescription)
	assert.Equal(t, 0.0, result.Score)
	assert.NotNil(t, result.JobSkills)
	assert.Empty(t, result.JobSkills)
	assert.Empty(t, result.Graph.MatchedSkills())
	assert.Equal(t, 4, result.Graph.Stats().TotalNodes)
}

func TestAnalyzeKeepsRequestID(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx := logger.WithRequestID(context.Background(), "req-42")

	result, err := a.Analyze(ctx, testResume, testJD)
	require.NoError(t, err)

	assert.Equal(t, "req-42", result.RequestID)
}

func TestAnalyzeCancelled(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Analyze(ctx, testResume, testJD)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeConcurrentUse(t *testing.T) {
	a := newTestAnalyzer(t)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := a.Analyze(context.Background(), testResume, testJD)
			if err == nil && len(result.Graph.MatchedSkills()) != 1 {
				err = errors.New("unexpected matched skills")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestBuildAnnotatorsGazetteer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.yaml")
	data := `
name: people
version: "1"
entities:
  - label: ORG
    terms: [Delta University]
  - label: PERSON
    terms: [Jane Roe]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg := config.DefaultConfig()
	cfg.Annotators.Generic = config.AnnotatorConfig{Backend: config.BackendGazetteer, GazetteerPath: path, CacheSize: 8}
	cfg.Annotators.Skill = config.AnnotatorConfig{Backend: config.BackendGazetteer}

	set, err := BuildAnnotators(context.Background(), cfg)
	require.NoError(t, err)
	defer set.Close()

	assert.Equal(t, "people@1", set.Generic.ModelName())
	assert.IsType(t, &annotator.Cached{}, set.Generic)
	assert.Equal(t, "skills@1.2", set.Skill.ModelName())

	a, err := New(set.Generic, set.Skill)
	require.NoError(t, err)

	result, err := a.Analyze(context.Background(), testResume, testJD)
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", models.Deref(result.Fields.Name, ""))
	assert.Equal(t, []string{"Delta University"}, result.Education)
	assert.Contains(t, result.Skills, "python")
}

// chatServer answers every chat completion with reply, or with status when it
// is not 200
func chatServer(t *testing.T, status int, reply string) (*httptest.Server, *int32) {
	t.Helper()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			fmt.Fprint(w, `{"error": {"message": "The model does not exist", "type": "invalid_request_error", "code": "model_not_found"}}`)
			return
		}
		body, _ := json.Marshal(map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "gpt-4o-mini",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": reply},
			}},
		})
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestBuildAnnotatorsOpenAI(t *testing.T) {
	srv, calls := chatServer(t, http.StatusOK, `{"entities": [{"text": "Jane Doe", "label": "PERSON"}]}`)

	cfg := config.DefaultConfig()
	cfg.OpenAI.APIKey = "sk-test"
	cfg.OpenAI.BaseURL = srv.URL + "/v1/"
	cfg.Annotators.Generic.Backend = config.BackendOpenAI

	set, err := BuildAnnotators(context.Background(), cfg)
	require.NoError(t, err)
	defer set.Close()

	assert.Equal(t, "openai/gpt-4o-mini[PERSON,EMAIL,PHONE,ORG]", set.Generic.ModelName())
	assert.Equal(t, int32(1), atomic.LoadInt32(calls), "the model is called once at startup")
}

func TestBuildAnnotatorsRejectsDeadModel(t *testing.T) {
	srv, calls := chatServer(t, http.StatusNotFound, "")

	cfg := config.DefaultConfig()
	cfg.OpenAI.APIKey = "sk-test"
	cfg.OpenAI.BaseURL = srv.URL + "/v1/"
	cfg.OpenAI.Model = "retired-model"
	cfg.Annotators.Generic.Backend = config.BackendOpenAI

	_, err := BuildAnnotators(context.Background(), cfg)
	assert.ErrorIs(t, err, annotator.ErrModelUnavailable)
	assert.ErrorContains(t, err, "generic annotator")
	assert.GreaterOrEqual(t, atomic.LoadInt32(calls), int32(1))
}

// failingGenerator rejects every prompt
type failingGenerator struct {
	err error
}

func (f failingGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return "", f.err
}

func (f failingGenerator) ModelName() string {
	return "failing"
}

func TestVerifiedLLMFailsAtStartup(t *testing.T) {
	_, err := verifiedLLM(context.Background(), failingGenerator{err: errors.New("permission denied")}, skillLabels, time.Second)

	assert.ErrorIs(t, err, annotator.ErrModelUnavailable)
	assert.ErrorContains(t, err, "permission denied")
}

func TestVerifiedLLMAppliesTimeout(t *testing.T) {
	_, err := verifiedLLM(context.Background(), blockingGenerator{}, skillLabels, 20*time.Millisecond)

	assert.ErrorIs(t, err, annotator.ErrModelUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// blockingGenerator waits until its context ends
type blockingGenerator struct{}

func (blockingGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (blockingGenerator) ModelName() string {
	return "blocking"
}

func TestBuildAnnotatorsModelUnavailable(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("OPENAI_API_KEY", "")

	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{
			name:   "Vertex AI without project",
			mutate: func(c *config.Config) {},
		},
		{
			name: "OpenAI without key",
			mutate: func(c *config.Config) {
				c.Annotators.Generic.Backend = config.BackendOpenAI
			},
		},
		{
			name: "Missing gazetteer",
			mutate: func(c *config.Config) {
				c.Annotators.Generic.Backend = config.BackendGazetteer
				c.Annotators.Generic.GazetteerPath = filepath.Join(t.TempDir(), "missing.yaml")
			},
		},
		{
			name: "Unknown backend",
			mutate: func(c *config.Config) {
				c.Annotators.Generic.Backend = config.BackendGazetteer
				c.Annotators.Skill.Backend = "spacy"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)

			_, err := BuildAnnotators(context.Background(), cfg)
			assert.ErrorIs(t, err, annotator.ErrModelUnavailable)
		})
	}
}
