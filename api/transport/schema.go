package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/fastygo/daymate/domain"
)

// Shape checks only; value rules live in the task validator.
const (
	createTaskSchema = `{
  "type": "object",
  "properties": {
    "title":       {"type": ["string", "null"]},
    "priority":    {"type": ["string", "null"]},
    "category":    {"type": ["string", "null"]},
    "dueDate":     {"type": ["string", "null"]},
    "description": {"type": ["string", "null"]}
  }
}`
	updateTaskSchema = `{
  "type": "object",
  "properties": {
    "title":       {"type": ["string", "null"]},
    "completed":   {"type": ["boolean", "null"]},
    "priority":    {"type": ["string", "null"]},
    "category":    {"type": ["string", "null"]},
    "dueDate":     {"type": ["string", "null"]},
    "description": {"type": ["string", "null"]}
  }
}`
	bulkCompleteSchema = `{
  "type": "object",
  "properties": {
    "ids":     {"type": ["array", "null"], "items": {"type": "string"}},
    "taskIds": {"type": ["array", "null"], "items": {"type": "string"}}
  }
}`
)

var (
	createSchema = mustCompile("create-task.json", createTaskSchema)
	updateSchema = mustCompile("update-task.json", updateTaskSchema)
	bulkSchema   = mustCompile("bulk-complete.json", bulkCompleteSchema)
)

func mustCompile(name, source string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	url := "mem://daymate/" + name
	if err := compiler.AddResource(url, strings.NewReader(source)); err != nil {
		panic(fmt.Sprintf("transport: add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("transport: compile schema %s: %v", name, err))
	}
	return schema
}

// decode checks body against schema and then unmarshals it into out. Every
// failure is a validation error keyed by the offending field, or "body" when
// the document as a whole is unusable.
func decode(body []byte, schema *jsonschema.Schema, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.NewValidationError(map[string]string{"body": "Request body is required"})
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return domain.NewValidationError(map[string]string{"body": "Malformed JSON"})
	}
	if err := schema.Validate(doc); err != nil {
		return schemaError(err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return domain.NewValidationError(map[string]string{"body": err.Error()})
	}
	return nil
}

func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return domain.NewValidationError(map[string]string{"body": err.Error()})
	}
	fields := map[string]string{}
	collectSchemaErrors(fields, ve)
	return domain.NewValidationError(fields)
}

func collectSchemaErrors(fields map[string]string, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		field := pointerToField(err.InstanceLocation)
		if _, exists := fields[field]; !exists {
			fields[field] = err.Message
		}
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(fields, cause)
	}
}

// pointerToField turns "/ids/2" into "ids" and the document root into "body".
func pointerToField(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return "body"
	}
	if idx := strings.IndexByte(ptr, '/'); idx >= 0 {
		ptr = ptr[:idx]
	}
	return ptr
}
