package llm

import (
	"context"
	"encoding/json"
)

// FakeClient replays scripted JSON payloads for offline runs and tests.
// Responses are consumed in order; when exhausted it returns Err (or
// ErrEmptyResponse when Err is nil).
type FakeClient struct {
	Responses []json.RawMessage
	Err       error
	Calls     int
}

func NewFakeClient(responses ...json.RawMessage) *FakeClient {
	return &FakeClient{Responses: responses}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	f.Calls++
	if len(f.Responses) == 0 {
		if f.Err != nil {
			return nil, f.Err
		}
		return nil, ErrEmptyResponse
	}
	out := f.Responses[0]
	f.Responses = f.Responses[1:]
	return out, nil
}
