package request

import "errors"

type CompleteRequest struct {
	Prompt    string `json:"prompt"`
	ModelID   string `json:"modelId,omitempty"`
	MaxTokens int    `json:"maxTokens,omitempty"`
}

func (r *CompleteRequest) Validate() error {
	if r.Prompt == "" {
		return errors.New("prompt is required")
	}
	if r.MaxTokens < 0 {
		return errors.New("maxTokens must not be negative")
	}
	return nil
}
