package translate

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// openaiBackend calls an OpenAI-compatible chat completions endpoint.
// Custom BaseURL makes it work against Groq, Ollama, and other
// compatible servers as well.
type openaiBackend struct {
	client *openai.Client
	model  string
}

func newOpenAIBackend(prov Provider) *openaiBackend {
	config := openai.DefaultConfig(prov.APIKey)
	if prov.BaseURL != "" {
		config.BaseURL = prov.BaseURL
	}
	model := prov.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &openaiBackend{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (b *openaiBackend) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", b.model)
	}
	return resp.Choices[0].Message.Content, nil
}
