// Package ai wraps the Gemini API for text generation, tag extraction, and
// similarity scoring.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// SimilarityScore is one scored pairing from a batch similarity call.
type SimilarityScore struct {
	Content    string  `json:"content"`
	Target     string  `json:"target"`
	Similarity float64 `json:"similarity"`
}

// Client generates text and structured outputs through the Gemini API.
type Client struct {
	client *genai.Client
	models map[ModelTier]string
}

// NewClient creates a Gemini-backed client. The three model names back the
// low, medium, and high tiers.
func NewClient(ctx context.Context, apiKey, low, medium, high string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("genai api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		client: client,
		models: map[ModelTier]string{
			ModelLow:    low,
			ModelMedium: medium,
			ModelHigh:   high,
		},
	}, nil
}

func (c *Client) model(tier ModelTier) string {
	if name, ok := c.models[tier]; ok && name != "" {
		return name
	}
	return c.models[ModelLow]
}

// GenerateText runs a free-text generation with the given system prompt.
func (c *Client) GenerateText(ctx context.Context, system, prompt string, opts TextOptions) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(opts.Temperature)),
		PresencePenalty:  genai.Ptr(float32(opts.Presence)),
		FrequencyPenalty: genai.Ptr(float32(opts.Frequency)),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model(opts.Model), genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate text: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// RunAction applies a canned editor-assist action to the content.
func (c *Client) RunAction(ctx context.Context, action Action, content string) (string, error) {
	system, prompt, err := ActionPrompts(action, content)
	if err != nil {
		return "", err
	}
	return c.GenerateText(ctx, system, prompt, TextOptions{})
}

// generateJSON runs a structured generation constrained by schema and decodes
// the response into out.
func (c *Client) generateJSON(ctx context.Context, tier ModelTier, prompt string, schema *genai.Schema, out any) error {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model(tier), genai.Text(prompt), config)
	if err != nil {
		return fmt.Errorf("generate structured output: %w", err)
	}
	if err := json.Unmarshal([]byte(resp.Text()), out); err != nil {
		return fmt.Errorf("decode structured output: %w", err)
	}
	return nil
}

// GenerateTags extracts between Min and Max tags from the content.
func (c *Client) GenerateTags(ctx context.Context, content string, opts TagOptions) ([]string, error) {
	opts = opts.withDefaults()

	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"tags": {
				Type:     genai.TypeArray,
				Items:    &genai.Schema{Type: genai.TypeString},
				MinItems: genai.Ptr(int64(opts.Min)),
				MaxItems: genai.Ptr(int64(opts.Max)),
			},
		},
		Required: []string{"tags"},
	}

	var result struct {
		Tags []string `json:"tags"`
	}
	prompt := fmt.Sprintf("다음 텍스트에서 적절한 태그를 %d개 이상 %d개 이하로 추출해주세요:\n\n%s", opts.Min, opts.Max, content)
	if err := c.generateJSON(ctx, opts.Model, prompt, schema, &result); err != nil {
		return nil, err
	}
	if len(result.Tags) > opts.Max {
		result.Tags = result.Tags[:opts.Max]
	}
	return result.Tags, nil
}

// Similarity scores how related two texts are, in [0,1].
func (c *Client) Similarity(ctx context.Context, content, target string, tier ModelTier) (float64, error) {
	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"similarity": {
				Type:    genai.TypeNumber,
				Minimum: genai.Ptr(0.0),
				Maximum: genai.Ptr(1.0),
			},
		},
		Required: []string{"similarity"},
	}

	var result struct {
		Similarity float64 `json:"similarity"`
	}
	prompt := fmt.Sprintf("다음 두 텍스트의 유사도를 계산해주세요:\n\n텍스트 1: %s\n\n텍스트 2: %s", content, target)
	if err := c.generateJSON(ctx, tier, prompt, schema, &result); err != nil {
		return 0, err
	}
	return result.Similarity, nil
}

// Similarities scores every pairing between the content and target groups in
// one call.
func (c *Client) Similarities(ctx context.Context, contents, targets []string, tier ModelTier) ([]SimilarityScore, error) {
	schema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"similarities": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"content": {Type: genai.TypeString},
						"target":  {Type: genai.TypeString},
						"similarity": {
							Type:    genai.TypeNumber,
							Minimum: genai.Ptr(0.0),
							Maximum: genai.Ptr(1.0),
						},
					},
					Required: []string{"content", "target", "similarity"},
				},
			},
		},
		Required: []string{"similarities"},
	}

	var result struct {
		Similarities []SimilarityScore `json:"similarities"`
	}
	prompt := fmt.Sprintf("다음 두 그룹 간의 각각의 매칭에 대해 유사도를 계산해주세요:\n\n# 그룹 content:\n%s\n\n# 그룹 target:\n%s",
		strings.Join(contents, "\n"), strings.Join(targets, "\n"))
	if err := c.generateJSON(ctx, tier, prompt, schema, &result); err != nil {
		return nil, err
	}
	return result.Similarities, nil
}

// ExtractKeywords pulls up to five comma-separated keywords from the content.
func (c *Client) ExtractKeywords(ctx context.Context, content string) ([]string, error) {
	system := "당신은 전문 에디터입니다. 주어진 내용에서 핵심 키워드를 5개 이내로 추출해주세요. 키워드는 쉼표(,)로 구분하여 반환해주세요. 앞뒤 공백은 제거해주세요."
	prompt := fmt.Sprintf("다음 내용에서 핵심 키워드를 추출해주세요:\n\n%s", content)

	text, err := c.GenerateText(ctx, system, prompt, TextOptions{})
	if err != nil {
		return nil, err
	}

	keywords := make([]string, 0)
	for _, keyword := range strings.Split(text, ",") {
		if trimmed := strings.TrimSpace(keyword); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords, nil
}
