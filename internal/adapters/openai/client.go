package openai

import (
    "context"
    "encoding/json"
    "errors"
    "strings"

    "github.com/openai/openai-go/v2"
    "github.com/openai/openai-go/v2/option"
    "github.com/rs/zerolog"

    "github.com/HamedShams/vuln-pulse/internal/config"
)

type Client struct {
    api   openai.Client
    key   string
    model string
    log   zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    api := openai.NewClient(
        option.WithAPIKey(cfg.OpenAIKey),
        option.WithRequestTimeout(cfg.OpenAITimeout),
    )
    return &Client{ api: api, key: cfg.OpenAIKey, model: cfg.OpenAIModel, log: log }
}

// Summarize turns the day's finding counters and event rows into a short
// prose digest for the security channel.
func (c *Client) Summarize(ctx context.Context, stats map[string]int, events []map[string]any) (string, error) {
    if strings.TrimSpace(c.key) == "" { return "", errors.New("openai: missing key") }
    payload, err := json.Marshal(map[string]any{"stats": stats, "events": events})
    if err != nil { return "", err }
    resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
        Model: openai.ChatModel(c.model),
        Messages: []openai.ChatCompletionMessageParamUnion{
            openai.SystemMessage("You are a product security engineer. Given counters and finding events from a dependency vulnerability scanner, write a concise daily digest: what is new, what was updated, and what needs a risk assessment. Plain text, a few sentences."),
            openai.UserMessage(string(payload)),
        },
    })
    if err != nil { return "", err }
    if len(resp.Choices) == 0 { return "", errors.New("openai: no choices") }
    return resp.Choices[0].Message.Content, nil
}
