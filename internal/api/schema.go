package api

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Response schemas check only what the client relies on; extra fields are
// always allowed.
var schemaSources = map[string]string{
	"plan": `{
		"type": "object",
		"anyOf": [{"required": ["lesson_plan_id"]}, {"required": ["lessonPlanId"]}, {"required": ["id"]}],
		"properties": {
			"lesson_plan_id": {"type": ["string", "null"]},
			"id": {"type": ["string", "null"]},
			"subject": {"type": ["string", "null"]},
			"topic": {"type": ["string", "null"]},
			"subtopics": {"type": ["array", "null"], "items": {"$ref": "#/$defs/subtopic"}},
			"structure": {"type": ["array", "null"], "items": {"$ref": "#/$defs/subtopic"}}
		},
		"$defs": {
			"subtopic": {
				"type": "object",
				"anyOf": [{"required": ["id"]}, {"required": ["subtopic_id"]}, {"required": ["subtopicId"]}],
				"properties": {
					"lesson_id": {"type": ["string", "null"]},
					"lessonId": {"type": ["string", "null"]}
				}
			}
		}
	}`,
	"plans": `{
		"type": "array",
		"items": {"$ref": "plan.json"}
	}`,
	"lesson": `{
		"type": "object",
		"anyOf": [{"required": ["lesson_id"]}, {"required": ["lessonId"]}, {"required": ["id"]}],
		"properties": {
			"sections": {"type": "array", "items": {"$ref": "#/$defs/section"}},
			"content": {
				"type": "object",
				"properties": {"sections": {"type": "array", "items": {"$ref": "#/$defs/section"}}}
			}
		},
		"$defs": {
			"section": {
				"type": "object",
				"required": ["title"],
				"properties": {
					"title": {"type": "string"},
					"content": {"type": ["string", "null"]},
					"keyPoints": {"type": ["array", "null"], "items": {"type": "string"}},
					"key_points": {"type": ["array", "null"], "items": {"type": "string"}}
				}
			}
		}
	}`,
	"expand": `{
		"type": "object",
		"required": ["expanded_content"],
		"properties": {"expanded_content": {"type": "string"}}
	}`,
	"complete": `{
		"type": "object",
		"properties": {"next_action": {"type": ["string", "null"]}}
	}`,
	"quiz": `{
		"type": "object",
		"anyOf": [{"required": ["quiz_id"]}, {"required": ["quizId"]}, {"required": ["id"]}],
		"required": ["questions"],
		"properties": {
			"questions": {
				"type": "array",
				"items": {
					"type": "object",
					"anyOf": [{"required": ["questionId"]}, {"required": ["question_id"]}],
					"properties": {
						"options": {"type": ["array", "null"], "items": {"type": "string"}},
						"maxMarks": {"type": ["number", "null"]},
						"max_marks": {"type": ["number", "null"]},
						"max": {"type": ["number", "null"]}
					}
				}
			}
		}
	}`,
	"result": `{
		"type": "object",
		"required": ["score"],
		"properties": {
			"score": {
				"type": "object",
				"properties": {"percentage": {"type": "number"}}
			},
			"weak_concepts": {"type": ["array", "null"], "items": {"type": "string"}},
			"responses": {"type": ["array", "null"], "items": {"type": "object"}}
		}
	}`,
	"tutor_start": `{
		"type": "object",
		"anyOf": [{"required": ["session_id"]}, {"required": ["sessionId"]}],
		"properties": {
			"session_id": {"type": "string"},
			"sessionId": {"type": "string"}
		}
	}`,
	"tutor_reply": `{
		"type": "object"
	}`,
}

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

func compileSchemas() {
	c := jsonschema.NewCompiler()
	for name, src := range schemaSources {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(src)))
		if err != nil {
			schemasErr = fmt.Errorf("parse schema %q: %w", name, err)
			return
		}
		if err := c.AddResource(schemaURL(name), doc); err != nil {
			schemasErr = fmt.Errorf("add schema %q: %w", name, err)
			return
		}
	}
	schemas = make(map[string]*jsonschema.Schema, len(schemaSources))
	for name := range schemaSources {
		sch, err := c.Compile(schemaURL(name))
		if err != nil {
			schemasErr = fmt.Errorf("compile schema %q: %w", name, err)
			return
		}
		schemas[name] = sch
	}
}

func schemaURL(name string) string {
	return "https://learnhub.local/schemas/" + name + ".json"
}

// validate checks raw against the named response schema.
func validate(name string, raw []byte) error {
	schemasOnce.Do(compileSchemas)
	if schemasErr != nil {
		return schemasErr
	}
	sch, ok := schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
