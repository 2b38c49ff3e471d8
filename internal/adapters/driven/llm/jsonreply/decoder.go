// Package jsonreply validates structured answers returned by LLM providers.
package jsonreply

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driven"
)

// Ensure Decoder implements the interface.
var _ driven.AnswerDecoder = (*Decoder)(nil)

// ErrNoObject is returned when the reply contains no JSON object.
var ErrNoObject = errors.New("jsonreply: no JSON object in reply")

// AnswerSchema is the JSON schema a chat answer must satisfy.
var AnswerSchema = map[string]any{
	"type":     "object",
	"required": []any{"answer"},
	"properties": map[string]any{
		"answer": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"confidence": map[string]any{
			"type":    "number",
			"minimum": 0,
			"maximum": 1,
		},
	},
}

// Decoder checks replies against AnswerSchema.
type Decoder struct {
	schema *jsonschema.Schema
}

// answerReply mirrors AnswerSchema.
type answerReply struct {
	Answer     string   `json:"answer"`
	Confidence *float64 `json:"confidence"`
}

// New compiles the answer schema.
func New() (*Decoder, error) {
	schema, err := compile(AnswerSchema)
	if err != nil {
		return nil, err
	}
	return &Decoder{schema: schema}, nil
}

func compile(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("answer.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("answer.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// Decode extracts and validates the answer object from raw. Markdown code
// fences and text around the object are tolerated. A missing confidence
// becomes domain.DefaultAnswerConfidence.
func (d *Decoder) Decode(raw string) (*domain.Answer, error) {
	obj, err := extractObject(raw)
	if err != nil {
		return nil, err
	}

	var v any
	if err := json.Unmarshal([]byte(obj), &v); err != nil {
		return nil, fmt.Errorf("unmarshal reply: %w", err)
	}
	if err := d.schema.Validate(v); err != nil {
		return nil, fmt.Errorf("reply does not match schema: %w", err)
	}

	var reply answerReply
	if err := json.Unmarshal([]byte(obj), &reply); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}
	text := strings.TrimSpace(reply.Answer)
	if text == "" {
		return nil, fmt.Errorf("reply answer is blank")
	}

	conf := domain.DefaultAnswerConfidence
	if reply.Confidence != nil {
		conf = *reply.Confidence
	}
	return &domain.Answer{Text: text, Confidence: conf}, nil
}

// extractObject returns the outermost {...} span of s.
func extractObject(s string) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", ErrNoObject
	}
	return s[start : end+1], nil
}
