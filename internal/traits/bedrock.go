package traits

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/ignite/creative-catalog/internal/config"
	"github.com/ignite/creative-catalog/internal/pkg/logger"
)

const anthropicVersion = "bedrock-2023-05-31"

// BedrockInvoker is the slice of the Bedrock runtime client the model uses.
type BedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockMessage is a message in a Bedrock conversation
type BedrockMessage struct {
	Role    string                `json:"role"`
	Content []BedrockContentBlock `json:"content"`
}

// BedrockContentBlock is a text or image block within a message
type BedrockContentBlock struct {
	Type   string              `json:"type"`
	Text   string              `json:"text,omitempty"`
	Source *BedrockImageSource `json:"source,omitempty"`
}

// BedrockImageSource carries an inline base64 image
type BedrockImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// BedrockRequest is the request body for Claude on Bedrock
type BedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	System           string           `json:"system,omitempty"`
	Messages         []BedrockMessage `json:"messages"`
	Temperature      float64          `json:"temperature,omitempty"`
}

// BedrockResponse is the response from Bedrock
type BedrockResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// BedrockModel is a VisionModel backed by an Anthropic model on Bedrock.
type BedrockModel struct {
	client    BedrockInvoker
	modelID   string
	maxTokens int
}

// NewBedrockModel loads AWS credentials from the default chain.
func NewBedrockModel(ctx context.Context, cfg config.TraitsConfig) (*BedrockModel, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("bedrock model initialized", "model", cfg.ModelID, "region", region)
	return NewBedrockModelWithClient(bedrockruntime.NewFromConfig(awsCfg), cfg.ModelID, cfg.MaxTokens), nil
}

// NewBedrockModelWithClient wraps an existing client.
func NewBedrockModelWithClient(client BedrockInvoker, modelID string, maxTokens int) *BedrockModel {
	if modelID == "" {
		modelID = "anthropic.claude-3-5-sonnet-20241022-v2:0"
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &BedrockModel{client: client, modelID: modelID, maxTokens: maxTokens}
}

// Describe sends the image followed by the prompt and returns the
// concatenated text blocks of the reply.
func (m *BedrockModel) Describe(ctx context.Context, prompt string, image []byte, mediaType string) (string, error) {
	if len(image) == 0 {
		return "", errors.New("bedrock: empty image")
	}

	request := BedrockRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        m.maxTokens,
		Messages: []BedrockMessage{{
			Role: "user",
			Content: []BedrockContentBlock{
				{
					Type: "image",
					Source: &BedrockImageSource{
						Type:      "base64",
						MediaType: mediaType,
						Data:      base64.StdEncoding.EncodeToString(image),
					},
				},
				{Type: "text", Text: prompt},
			},
		}},
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	output, err := m.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(m.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        requestBody,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock invoke: %w", err)
	}

	var response BedrockResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	logger.Debug("bedrock reply",
		"in_tokens", response.Usage.InputTokens,
		"out_tokens", response.Usage.OutputTokens,
		"stop", response.StopReason)
	return text, nil
}
