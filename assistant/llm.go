package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/assetflow/assetflow_backend/utils"
)

// Action is the structured interpretation of one user message. The model is
// instructed to answer with this JSON shape and nothing else.
type Action struct {
	Name   string            `json:"action"`
	Entity string            `json:"entity,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Query  string            `json:"query,omitempty"`
	Reply  string            `json:"reply,omitempty"`
}

// Known action names.
const (
	ActionStartCreate     = "start_create"
	ActionProvideField    = "provide_field"
	ActionSearchDevice    = "search_device"
	ActionSearchMovements = "search_movements"
	ActionClearChat       = "clear_chat"
	ActionLogout          = "logout"
	ActionGreeting        = "greeting"
	ActionUnknown         = "unknown"
)

const systemPrompt = `You are the interpreter for a mobile device inventory system.
Classify the user message into exactly one JSON object:
{"action": one of [start_create, provide_field, search_device, search_movements, clear_chat, logout, greeting, unknown],
 "entity": optional, one of [device, collaborator, brand, sector],
 "fields": optional map of field name to value extracted from the message,
 "query": optional search text,
 "reply": a short natural language reply to show the user}
Answer with the JSON object only.`

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// LLMClient calls an OpenAI-compatible chat completion endpoint.
type LLMClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

func NewLLMClient() *LLMClient {
	model := os.Getenv("ASSISTANT_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &LLMClient{
		baseURL:    os.Getenv("ASSISTANT_API_URL"),
		apiKey:     os.Getenv("ASSISTANT_API_KEY"),
		model:      model,
		httpClient: &http.Client{Timeout: 45 * time.Second},
		maxRetries: 3,
	}
}

func NewLLMClientWith(baseURL, apiKey, model string, httpClient *http.Client) *LLMClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 45 * time.Second}
	}
	return &LLMClient{baseURL: baseURL, apiKey: apiKey, model: model, httpClient: httpClient, maxRetries: 3}
}

// Interpret asks the model to classify one message given the recent
// conversation. Overloaded providers (503) are retried with backoff.
func (c *LLMClient) Interpret(ctx context.Context, history []chatMessage, message string) (*Action, error) {
	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, chatMessage{Role: "user", Content: message})

	payload, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", utils.ErrorExternalTimeout, ctx.Err())
			case <-time.After(backoff):
			}
		}

		action, retryable, err := c.interpretOnce(ctx, payload)
		if err == nil {
			return action, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *LLMClient) interpretOnce(ctx context.Context, payload []byte) (*Action, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", utils.ErrorExternalError, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, false, fmt.Errorf("%w: %v", utils.ErrorExternalTimeout, err)
		}
		return nil, true, fmt.Errorf("%w: %v", utils.ErrorExternalError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, true, fmt.Errorf("%w: assistant provider overloaded", utils.ErrorExternalError)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("%w: assistant provider returned %d", utils.ErrorExternalError, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", utils.ErrorExternalError, err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Choices) == 0 {
		return nil, false, fmt.Errorf("%w: invalid assistant payload", utils.ErrorExternalError)
	}

	var action Action
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), &action); err != nil {
		// a model that answered in prose becomes an unknown action with
		// the prose as the reply
		return &Action{Name: ActionUnknown, Reply: parsed.Choices[0].Message.Content}, false, nil
	}
	if action.Name == "" {
		action.Name = ActionUnknown
	}
	return &action, false, nil
}
