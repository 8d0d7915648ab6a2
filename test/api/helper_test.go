package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Response mirrors the API envelope.
type Response struct {
	Success bool                   `json:"success"`
	Data    json.RawMessage        `json:"data"`
	Error   *ResponseError         `json:"error"`
	decoded map[string]interface{}
}

type ResponseError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

func (r *Response) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Message
}

func (r *Response) ErrorCode() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Code
}

// Object decodes the data payload as a JSON object.
func (r *Response) Object() map[string]interface{} {
	if r.decoded == nil {
		r.decoded = map[string]interface{}{}
		_ = json.Unmarshal(r.Data, &r.decoded)
	}
	return r.decoded
}

// Array decodes the data payload as a JSON array.
func (r *Response) Array() []interface{} {
	var out []interface{}
	_ = json.Unmarshal(r.Data, &out)
	return out
}

func (r *Response) GetString(key string) string {
	if v, ok := r.Object()[key].(string); ok {
		return v
	}
	return ""
}

func (r *Response) GetNumber(key string) float64 {
	if v, ok := r.Object()[key].(float64); ok {
		return v
	}
	return 0
}

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func makeRequest(method, path string, body interface{}, token string) *Response {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return &Response{Error: &ResponseError{Message: err.Error()}}
		}
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		return &Response{Error: &ResponseError{Message: err.Error()}}
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return &Response{Error: &ResponseError{Message: err.Error()}}
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return &Response{Error: &ResponseError{Message: fmt.Sprintf("decode failed with status %d: %v", resp.StatusCode, err)}}
	}
	return &out
}
