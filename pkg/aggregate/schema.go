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

import (
	"fmt"
	"sort"
)

var openAPIType = map[FieldType][2]string{
	FieldString:  {"string", ""},
	FieldText:    {"string", ""},
	FieldInteger: {"integer", ""},
	FieldFloat:   {"number", "float"},
	FieldDouble:  {"number", "double"},
	FieldBoolean: {"boolean", ""},
}

// fieldsToOpenAPISchema transforms an aggregation's field map into a
// function-calling JSON schema, ported from
// Aggregator.config_ddl_to_openapi.
func fieldsToOpenAPISchema(fields map[string]Field) map[string]any {
	properties := make(map[string]any, len(fields))
	for name, field := range fields {
		properties[name] = fieldToSchema(field)
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	return schema
}

func fieldToSchema(field Field) map[string]any {
	if field.Type == FieldList {
		schema := map[string]any{"type": "array"}
		if field.Of != nil {
			schema["items"] = fieldToSchema(*field.Of)
		}
		if field.Description != "" {
			schema["description"] = field.Description
		}
		return schema
	}

	if field.Type == FieldObject {
		properties := make(map[string]any, len(field.Properties))
		for name, prop := range field.Properties {
			properties[name] = fieldToSchema(prop)
		}
		schema := map[string]any{"type": "object"}
		if len(properties) > 0 {
			schema["properties"] = properties
		}
		if field.Description != "" {
			schema["description"] = field.Description
		}
		return schema
	}

	if field.Type == FieldItem {
		var schema map[string]any
		if field.Of != nil {
			schema = fieldToSchema(*field.Of)
		} else {
			schema = map[string]any{"type": "string"}
		}
		if field.Description != "" {
			schema["description"] = field.Description
		}
		if field.Multiple {
			schema = map[string]any{"type": "array", "items": schema}
		}
		applyEnum(schema, field.Enum, "Possible values: ", "%s: %s")
		return schema
	}

	openapiType, openapiFormat := "string", ""
	if mapped, ok := openAPIType[field.Type]; ok {
		openapiType, openapiFormat = mapped[0], mapped[1]
	}
	schema := map[string]any{"type": openapiType}
	if openapiFormat != "" {
		schema["format"] = openapiFormat
	}
	if field.Description != "" {
		schema["description"] = field.Description
	}
	applyEnum(schema, field.Enum, "Possible values: ", "%s is %s")

	if field.Multiple {
		schema = map[string]any{"type": "array", "items": schema}
	}
	return schema
}

// applyEnum mirrors config_ddl_to_openapi's two enum shapes: a plain
// []string constrains the value directly; a map[string]string also
// appends per-key descriptions to the field description, formatted with
// entryFormat — "%s: %s" for an "item"-typed field (aggregator.py's
// node_type=='item' branch), "%s is %s" for every other field type
// (aggregator.py's primitive-type fallback).
func applyEnum(schema map[string]any, enum any, prefix, entryFormat string) {
	switch e := enum.(type) {
	case nil:
		return
	case []string:
		values := make([]any, len(e))
		for i, v := range e {
			values[i] = v
		}
		schema["enum"] = values
	case map[string]string:
		keys := make([]string, 0, len(e))
		for k := range e {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make([]any, 0, len(e))
		descriptions := make([]string, 0, len(e))
		for _, k := range keys {
			values = append(values, k)
			descriptions = append(descriptions, fmt.Sprintf(entryFormat, k, e[k]))
		}
		schema["enum"] = values
		existing, _ := schema["description"].(string)
		if existing != "" {
			existing += " "
		}
		schema["description"] = existing + prefix + joinStrings(descriptions, ", ")
	}
}

func joinStrings(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}
