package providers

import (
	"context"
	"fmt"

	"github.com/vaultrag-api/errs"
)

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Complete sends the ordered message sequence to the chat model and returns
// the reply text. The configured model name is forwarded verbatim.
func (c *Client) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	var resp chatCompletionResponse
	err := c.postJSON(ctx, "/v1/chat/completions", chatCompletionRequest{
		Model:       c.cfg.ChatModel,
		Messages:    messages,
		Temperature: temperature,
	}, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errs.ProviderPermanent(fmt.Errorf("no choices in chat completion response"))
	}

	return resp.Choices[0].Message.Content, nil
}
