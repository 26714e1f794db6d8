// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kadirpekel/semhub/pkg/config"
	"github.com/kadirpekel/semhub/pkg/httpclient"
)

// chatCompletionProvider talks to any OpenAI-wire-compatible chat
// completions endpoint. OpenAI and Groq both qualify, so one
// implementation serves both config.LLMConfig.Type values.
type chatCompletionProvider struct {
	client  *httpclient.Client
	apiKey  string
	baseURL string
	model   string
}

func newChatCompletionProvider(cfg *config.LLMConfig) *chatCompletionProvider {
	return &chatCompletionProvider{
		client:  httpClientFor(cfg.Timeout),
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

type chatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
}

type toolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type toolSpec struct {
	Type     string `json:"type"`
	Function struct {
		Name        string         `json:"name"`
		Description string         `json:"description,omitempty"`
		Parameters  map[string]any `json:"parameters,omitempty"`
	} `json:"function"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Tools       []toolSpec    `json:"tools,omitempty"`
	ToolChoice  string        `json:"tool_choice,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (p *chatCompletionProvider) GetModelName() string { return p.model }

func (p *chatCompletionProvider) Close() error { return nil }

// SingleQuery issues a plain, tool-free completion. Temperature is pinned to
// 0: the Aggregator relies on deterministic classification and function
// selection, the same assumption the original aggregator.py makes by
// calling its LLM client without sampling parameters.
func (p *chatCompletionProvider) SingleQuery(ctx context.Context, prompt string, files []FileInput) (string, error) {
	messages := []chatMessage{{Role: "user", Content: WithFileText(prompt, files)}}
	resp, err := p.complete(ctx, messages, nil)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm %s: empty completion", p.model)
	}
	return resp.Choices[0].Message.Content, nil
}

// FunctionQuery offers tools and returns whichever calls the model made.
func (p *chatCompletionProvider) FunctionQuery(ctx context.Context, messages []Message, tools []ToolDefinition) ([]ToolCall, error) {
	wireMessages := make([]chatMessage, len(messages))
	for i, m := range messages {
		wireMessages[i] = chatMessage{Role: m.Role, Content: m.Content, ToolCallID: m.ToolCallID, Name: m.Name}
	}

	wireTools := make([]toolSpec, len(tools))
	for i, t := range tools {
		wireTools[i].Type = "function"
		wireTools[i].Function.Name = t.Name
		wireTools[i].Function.Description = t.Description
		wireTools[i].Function.Parameters = t.Parameters
	}

	resp, err := p.complete(ctx, wireMessages, wireTools)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm %s: empty completion", p.model)
	}

	calls := resp.Choices[0].Message.ToolCalls
	out := make([]ToolCall, 0, len(calls))
	for _, c := range calls {
		var args map[string]any
		if err := json.Unmarshal([]byte(c.Function.Arguments), &args); err != nil {
			args = map[string]any{}
		}
		out = append(out, ToolCall{ID: c.ID, Name: c.Function.Name, Arguments: args, RawArgs: c.Function.Arguments})
	}
	return out, nil
}

func (p *chatCompletionProvider) complete(ctx context.Context, messages []chatMessage, tools []toolSpec) (*chatCompletionResponse, error) {
	reqBody := chatCompletionRequest{Model: p.model, Messages: messages, Temperature: 0}
	if len(tools) > 0 {
		reqBody.Tools = tools
		reqBody.ToolChoice = "auto"
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal chat completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chat completion response: %w", err)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode chat completion response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("llm %s returned error: %s (%s)", p.model, parsed.Error.Message, parsed.Error.Type)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llm %s returned status %d: %s", p.model, resp.StatusCode, string(respBody))
	}
	return &parsed, nil
}
