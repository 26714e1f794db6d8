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

// Package llms provides a small, uniform client over chat-completion style
// LLM APIs (OpenAI and Groq, both OpenAI-wire-compatible).
//
// The Aggregator needs exactly two operations from an LLM: a plain text
// completion for classification ("single query") and a tool/function-call
// dispatch that returns structured arguments ("function query"). Everything
// else — streaming, thinking blocks, image parts, multi-vendor structured
// output config — belongs to a richer agent-framework client, not this one.
package llms

// Message is one turn of a conversation sent to the LLM.
type Message struct {
	Role       string `json:"role"` // "system", "user", "assistant", "tool"
	Content    string `json:"content,omitempty"`
	ToolCallID string `json:"tool_call_id,omitempty"`
	Name       string `json:"name,omitempty"`
}

// FileInput is a non-text attachment on a user message. Only PDFs are
// supported: the content is text-extracted page by page and appended to
// the prompt text rather than sent as a native file part (no
// provider in this stack accepts raw PDF bytes over the chat completions
// wire format).
type FileInput struct {
	Filename string `json:"filename"`
	Data     []byte `json:"data"` // base64 over the wire, per encoding/json's []byte handling
	MimeType string `json:"mime_type"`
}

// ToolDefinition describes one callable function, JSON-Schema parameters
// included, offered to the model during a FunctionQuery.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON Schema
}

// ToolCall is one function invocation the model asked for.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
	RawArgs   string
}
