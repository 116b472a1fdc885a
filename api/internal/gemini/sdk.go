package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// SDKClient produces the same result and error kinds as Client, going
// through the genai SDK instead of hand-built requests.
type SDKClient struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewSDK(apiKey, model string, timeout time.Duration) *SDKClient {
	c := &SDKClient{
		APIKey:  strings.TrimSpace(apiKey),
		Model:   strings.TrimSpace(model),
		Timeout: timeout,
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

func (c *SDKClient) Name() string     { return "gemini-sdk" }
func (c *SDKClient) GetModel() string { return c.Model }

func (c *SDKClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", ErrMissingAPIKey
	}
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.APIKey))
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer cl.Close()

	m := cl.GenerativeModel(c.Model)
	if m == nil {
		return "", &TransportError{Err: fmt.Errorf("gemini: model is nil")}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifySDK(err)
	}
	return sdkCandidateText(resp)
}

func sdkCandidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp != nil && len(resp.Candidates) > 0 {
		cand := resp.Candidates[0]
		if cand != nil && cand.Content != nil && len(cand.Content.Parts) > 0 {
			if t, ok := cand.Content.Parts[0].(genai.Text); ok {
				return string(t), nil
			}
		}
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return "", &DecodeError{Err: err}
	}
	return "", &FormatError{Raw: raw}
}

func classifySDK(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		body := gerr.Body
		if body == "" {
			body = gerr.Message
		}
		return &StatusError{Code: gerr.Code, Body: body}
	}
	return classifyTransport(err)
}
