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

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kadirpekel/semhub/pkg/apperror"
	"github.com/kadirpekel/semhub/pkg/logger"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError maps err to its §7 HTTP status via apperror.HTTPStatus and
// writes a JSON body. A *apperror.ValidationError's per-field messages are
// surfaced so a client can highlight the offending fields.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.HTTPStatus(err)
	if status >= 500 {
		logger.GetLogger().Error("request failed", "path", r.URL.Path, "error", err)
	}

	resp := errorResponse{Error: err.Error()}
	var ve *apperror.ValidationError
	if errors.As(err, &ve) {
		resp.Fields = ve.Fields
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.GetLogger().Error("write response body failed", "error", err)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return &apperror.ValidationError{Fields: map[string]string{"body": "request body is required"}}
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &apperror.ValidationError{Fields: map[string]string{"body": err.Error()}}
	}
	return nil
}
