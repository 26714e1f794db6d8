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

package embedders

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

// hostedEmbedder calls a self-hosted embedding HTTP service
// (EMBEDDINGS_PROVIDER_URL in original_source/settings.py) that takes a
// batch of strings and returns a batch of vectors. No API key or specific
// model name is assumed — the service owns that.
type hostedEmbedder struct {
	client    *httpclient.Client
	baseURL   string
	model     string
	dimension int
	batchSize int
}

type hostedEmbedRequest struct {
	Input []string `json:"input"`
}

type hostedEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func newHostedEmbedder(cfg *config.EmbedderConfig) *hostedEmbedder {
	return &hostedEmbedder{
		client:    httpclient.New(httpclient.WithMaxRetries(3)),
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		dimension: cfg.Dimension,
		batchSize: cfg.BatchSize,
	}
}

func (e *hostedEmbedder) GetDimension() int   { return e.dimension }
func (e *hostedEmbedder) GetModelName() string { return e.model }
func (e *hostedEmbedder) Close() error         { return nil }

func (e *hostedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.call(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *hostedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	results := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += e.batchSize {
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := e.call(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		results = append(results, batch...)
	}
	return results, nil
}

func (e *hostedEmbedder) call(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody, err := json.Marshal(hostedEmbedRequest{Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal hosted embedding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build hosted embedding request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("hosted embedding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read hosted embedding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hosted embedding service returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed hostedEmbedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode hosted embedding response: %w", err)
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, fmt.Errorf("hosted embedding service returned %d vectors for %d inputs", len(parsed.Embeddings), len(texts))
	}
	return parsed.Embeddings, nil
}
