package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/sashabaranov/go-openai"

	"github.com/kmiya/newsbrief/pkg/config"
)

// Summarizer produces short on-demand article summaries through an
// OpenAI-compatible endpoint. Stateless collaborator of the presentation
// layer: the ingestion pipeline never calls it, and every failure is
// reported as a value so a broken or unconfigured summarizer can't affect
// anything else.
type Summarizer struct {
	client    *openai.Client
	config    config.SummaryConfig
	systemMsg string
}

// Result is the outcome of one summarization call
type Result struct {
	Success bool   `json:"success"`
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}

// default prompt asks for a short, beginner-friendly bullet summary
const defaultPrompt = `Summarize the article behind the given title and URL for a non-expert reader.
Explain technical terms briefly. Answer with exactly three short bullet points, one or two sentences each, in the language of the title.`

// New creates a summarizer from the given configuration. A missing API key
// doesn't fail construction, the summarizer just reports itself
// unconfigured on every call.
func New(cfg config.SummaryConfig) *Summarizer {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}

	systemMsg := cfg.Prompt
	if systemMsg == "" {
		systemMsg = defaultPrompt
	}

	return &Summarizer{
		client:    openai.NewClientWithConfig(clientConfig),
		config:    cfg,
		systemMsg: systemMsg,
	}
}

// Enabled reports whether an API key is configured
func (s *Summarizer) Enabled() bool {
	return s.config.APIKey != ""
}

// Summarize returns a summary for the article, or a failure result.
// Never returns a Go error, the caller renders the result as-is.
func (s *Summarizer) Summarize(ctx context.Context, title, url string) Result {
	if !s.Enabled() {
		return Result{Error: "summarization is not configured"}
	}
	if strings.TrimSpace(title) == "" {
		return Result{Error: "title is required"}
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       s.config.Model,
		Temperature: float32(s.config.Temperature),
		MaxTokens:   s.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: s.systemMsg},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Title: %s\nURL: %s", title, url)},
		},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		lgr.Printf("[WARN] summarization failed for %q: %v", title, err)
		return Result{Error: fmt.Sprintf("summarization failed: %v", err)}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return Result{Error: "empty response from model"}
	}

	return Result{Success: true, Summary: strings.TrimSpace(resp.Choices[0].Message.Content)}
}
