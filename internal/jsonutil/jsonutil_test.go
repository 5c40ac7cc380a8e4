package jsonutil

import (
	"errors"
	"testing"
)

func TestUnmarshalFlex_Direct(t *testing.T) {
	var out struct {
		A int `json:"a"`
	}
	if err := UnmarshalFlex([]byte(`{"a":1}`), &out); err != nil {
		t.Fatalf("direct unmarshal failed: %v", err)
	}
	if out.A != 1 {
		t.Fatalf("got %d, want 1", out.A)
	}
}

func TestUnmarshalFlex_FencedBlock(t *testing.T) {
	payload := "Sure, here you go:\n```json\n{\"a\": 2}\n```\nAnything else?"
	var out struct {
		A int `json:"a"`
	}
	if err := UnmarshalFlex([]byte(payload), &out); err != nil {
		t.Fatalf("fenced extraction failed: %v", err)
	}
	if out.A != 2 {
		t.Fatalf("got %d, want 2", out.A)
	}
}

func TestExtract_RawObjectInProse(t *testing.T) {
	got, err := Extract(`The answer is {"score": 80, "note": "brace } in string"} as requested.`)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	want := `{"score": 80, "note": "brace } in string"}`
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestExtract_PrefersTaggedBlockOverProse(t *testing.T) {
	text := "```python\nprint({1: 2})\n```\n```json\n{\"ok\": true}\n```"
	got, err := Extract(text)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if got != `{"ok": true}` {
		t.Fatalf("got %s", got)
	}
}

func TestExtract_Array(t *testing.T) {
	got, err := Extract(`results: [1, 2, 3]`)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if got != `[1, 2, 3]` {
		t.Fatalf("got %s", got)
	}
}

func TestExtract_NoJSON(t *testing.T) {
	if _, err := Extract("no structured data here"); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
	if _, err := Extract("unbalanced { forever"); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON for unbalanced input, got %v", err)
	}
}
