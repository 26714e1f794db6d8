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

package aggregate

import "github.com/kadirpekel/semhub/pkg/llms"

// FieldType enumerates the field kinds an AggregationQuery's field map may
// hold (§4.10).
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldText    FieldType = "text"
	FieldInteger FieldType = "integer"
	FieldFloat   FieldType = "float"
	FieldDouble  FieldType = "double"
	FieldBoolean FieldType = "boolean"
	FieldList    FieldType = "list"
	FieldObject  FieldType = "object"
	FieldItem    FieldType = "item"
)

// ItemField is the embedded search config an "item"-typed field uses to
// resolve its possible values via the Searcher (§4.10 step 5).
type ItemField struct {
	Export           string         `json:"export"`
	Filter           map[string]any `json:"filter,omitempty"`
	Limit            int            `json:"limit,omitempty"`
	DistanceFunction string         `json:"distance_function,omitempty"`
}

// Field describes one entry in an AggregationQuery's field map.
type Field struct {
	Type        FieldType `json:"type"`
	Description string    `json:"description,omitempty"`
	// Enum is either []string or map[string]string (value -> description).
	Enum       any             `json:"enum,omitempty"`
	Multiple   bool            `json:"multiple,omitempty"`
	Value      any             `json:"value,omitempty"` // literal, post-injected into every result (step 6)
	Of         *Field          `json:"of,omitempty"`
	Properties map[string]Field `json:"properties,omitempty"`
	Item       *ItemField      `json:"item,omitempty"`
}

// AggregationQuery is one named, independently invocable aggregation.
type AggregationQuery struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Facts       []string         `json:"facts,omitempty"`
	Fields      map[string]Field `json:"fields,omitempty"`
}

// Sort configures the stable sort applied to structured LLM results
// before expansion (§4.10 step 4).
type Sort struct {
	Field string `json:"field"`
	Order string `json:"order"` // "asc" | "desc"
}

// Config is one aggregation request. HeavyModel/LightModel are provider
// names (e.g. "openai:gpt-4o-mini") the httpapi layer resolves into
// HeavyLLM/LightLLM via the LLM registry before calling Aggregate; falls
// back to the collection's configured defaults when empty.
type Config struct {
	Prompt       string             `json:"prompt"`
	Aggregations []AggregationQuery `json:"aggregations"`
	// Limit caps how many matched aggregations get schematized/invoked; a
	// zero value (including an omitted JSON field) defaults to 1 in
	// Aggregator.Aggregate.
	Limit                int                `json:"limit,omitempty"`
	Sort                 *Sort              `json:"sort,omitempty"`
	Files                []llms.FileInput   `json:"files,omitempty"`
	HeavyModel           string             `json:"heavy_model,omitempty"`
	LightModel           string             `json:"light_model,omitempty"`
	HeavyLLM             llms.Provider      `json:"-"`
	LightLLM             llms.Provider      `json:"-"`
	ClassificationPrompt string             `json:"classification_prompt,omitempty"`
	AggregationPrompt    string             `json:"aggregation_prompt,omitempty"`
}

// Result is one matched aggregation's expanded output.
type Result struct {
	Name  string           `json:"name"`
	Items []map[string]any `json:"items"`
}

const defaultClassificationPrompt = `Assign to Categories: Match the query to one or more of the most relevant categories from the list below, selecting up to three categories that best fit.

Categories:
{categories}

Instructions:
Identify the category names that best match the user's query and write just them. Don't say anything else.

User's Query:
{prompt}`

const defaultAggregationPrompt = `Call the correct function for the following query:
{prompt}`
