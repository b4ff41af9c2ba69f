package llm

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/vertexai/genai"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const (
	// DefaultVertexModel is the Gemini model used for entity recognition
	DefaultVertexModel = "gemini-2.0-flash"
	// DefaultVertexLocation is used when no location is configured
	DefaultVertexLocation = "us-central1"

	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
)

// VertexAIConfig configures the Vertex AI client
type VertexAIConfig struct {
	ProjectID       string
	Location        string
	Model           string
	CredentialsPath string
}

// VertexAIClient wraps the Vertex AI Gemini API
type VertexAIClient struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// NewVertexAIClient creates a new Vertex AI client
func NewVertexAIClient(ctx context.Context, cfg VertexAIConfig) (*VertexAIClient, error) {
	if cfg.ProjectID == "" {
		cfg.ProjectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT is not set")
	}
	if cfg.Location == "" {
		cfg.Location = DefaultVertexLocation
	}
	if cfg.Model == "" {
		cfg.Model = DefaultVertexModel
	}

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		data, err := os.ReadFile(cfg.CredentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read google credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse google credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)

	// Entity spans must be reproducible across calls
	model.SetTemperature(0)
	model.SetTopK(1)
	model.SetMaxOutputTokens(2048)
	model.ResponseMIMEType = "application/json"

	return &VertexAIClient{
		client:    client,
		model:     model,
		modelName: cfg.Model,
	}, nil
}

// ModelName returns the Gemini model identifier
func (v *VertexAIClient) ModelName() string {
	return "vertexai/" + v.modelName
}

// GenerateContent sends a prompt to the model and returns the response
func (v *VertexAIClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := v.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates returned")
	}

	var result string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			result += string(text)
		}
	}

	return result, nil
}

// Close closes the Vertex AI client
func (v *VertexAIClient) Close() error {
	return v.client.Close()
}
