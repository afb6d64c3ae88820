package service

import (
	"context"
	"errors"
	"fmt"

	"invoice-assistant/internal/dto"
	"invoice-assistant/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// GigaChatClient is the chat backend built on the gigago SDK.
type GigaChatClient struct {
	client *gigago.Client
	model  string
	logger *zap.Logger
}

func NewGigaChatClient(ctx context.Context, cfg *config.GigaChatConfig, logger *zap.Logger) (*GigaChatClient, error) {
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.OAuthURL != "" {
		opts = append(opts, gigago.WithCustomURLOauth(cfg.OAuthURL))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, gigago.WithCustomURLAI(cfg.BaseURL))
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	logger.Info("Using GigaChat chat backend", zap.String("model", cfg.Model))
	return &GigaChatClient{
		client: client,
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// Complete sends the conversation with req.System as the model's system
// instruction. Without a positive MaxTokens the SDK default applies.
func (c *GigaChatClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SystemInstruction = req.System
	model.Temperature = chatTemperature
	if req.MaxTokens > 0 {
		model.MaxTokens = int32(req.MaxTokens)
	}

	messages := make([]gigago.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := gigago.RoleUser
		if m.Role == dto.RoleAssistant {
			role = gigago.RoleAssistant
		}
		messages = append(messages, gigago.Message{Role: role, Content: m.Content})
	}

	resp, err := model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from GigaChat")
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *GigaChatClient) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}
