/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package schemas

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/leadlovers/leadlovers-mcp/logging"
)

// Validator validates tool arguments and outputs against their contracts.
// Compiled schemas are cached; the schema text never changes at runtime.
type Validator struct {
	logger *logging.Logger

	mu    sync.Mutex
	cache map[string]*gojsonschema.Schema
}

// ValidationResult represents the result of a validation
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	Errors    []string `json:"errors,omitempty"`     // User-friendly error messages
	RawErrors []string `json:"raw_errors,omitempty"` // Original error messages from validator
}

// NewValidator creates a new Validator
func NewValidator(logger *logging.Logger) *Validator {
	return &Validator{
		logger: logger,
		cache:  make(map[string]*gojsonschema.Schema),
	}
}

// ValidateInput checks tool arguments against the tool's input contract.
func (v *Validator) ValidateInput(tool string, data []byte) (*ValidationResult, error) {
	schemaJSON, ok := inputSchemas[tool]
	if !ok {
		return nil, fmt.Errorf("no input schema registered for tool %s", tool)
	}
	return v.validate("input:"+tool, schemaJSON, data)
}

// ValidateOutput checks a service payload against the tool's output
// contract. An invalid output is an internal fault, never the caller's.
func (v *Validator) ValidateOutput(tool string, data []byte) (*ValidationResult, error) {
	schemaJSON, ok := outputSchemas[tool]
	if !ok {
		return nil, fmt.Errorf("no output schema registered for tool %s", tool)
	}
	return v.validate("output:"+tool, schemaJSON, data)
}

func (v *Validator) validate(cacheKey, schemaJSON string, data []byte) (*ValidationResult, error) {
	schema, err := v.compiled(cacheKey, schemaJSON)
	if err != nil {
		return nil, err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	validationResult := &ValidationResult{
		Valid: result.Valid(),
	}

	if !result.Valid() {
		for _, desc := range result.Errors() {
			rawError := desc.String()
			validationResult.RawErrors = append(validationResult.RawErrors, rawError)
			validationResult.Errors = append(validationResult.Errors, formatValidationError(rawError))
		}
	}

	return validationResult, nil
}

func (v *Validator) compiled(cacheKey, schemaJSON string) (*gojsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if schema, ok := v.cache[cacheKey]; ok {
		return schema, nil
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema for %s: %w", cacheKey, err)
	}
	v.cache[cacheKey] = schema
	return schema, nil
}

// formatValidationError converts technical validation errors to user-friendly messages
func formatValidationError(rawError string) string {
	// Common patterns from gojsonschema:
	// "(root): field is required" -> "Missing required field: field"
	// "(root): Additional property x is not allowed" -> "Unexpected field: x (not allowed by schema)"
	// "field: Invalid type. Expected: string, given: number" -> "Field 'field': expected string, got number"

	// Handle "is required" errors
	if strings.Contains(rawError, "is required") {
		parts := strings.SplitN(rawError, ": ", 2)
		if len(parts) == 2 {
			fieldName := strings.TrimSuffix(parts[1], " is required")
			if strings.HasPrefix(parts[0], "(root).") {
				context := strings.TrimPrefix(parts[0], "(root).")
				return fmt.Sprintf("Missing required field: %s (in %s)", fieldName, context)
			}
			return fmt.Sprintf("Missing required field: %s", fieldName)
		}
	}

	// Handle "Additional property" errors
	if strings.Contains(rawError, "Additional property") {
		parts := strings.SplitN(rawError, "Additional property ", 2)
		if len(parts) == 2 {
			fieldPart := strings.TrimSuffix(parts[1], " is not allowed")
			return fmt.Sprintf("Unexpected field: %s (not allowed by schema)", fieldPart)
		}
	}

	// Handle "Invalid type" errors
	if strings.Contains(rawError, "Invalid type") {
		parts := strings.SplitN(rawError, ": Invalid type. ", 2)
		if len(parts) == 2 {
			field := parts[0]
			if field == "(root)" {
				field = "root object"
			}
			typeInfo := strings.ReplaceAll(parts[1], "Expected: ", "expected ")
			typeInfo = strings.ReplaceAll(typeInfo, ", given: ", ", got ")
			return fmt.Sprintf("Field '%s': %s", field, typeInfo)
		}
	}

	// Handle length errors
	if strings.Contains(rawError, "String length must be") {
		parts := strings.SplitN(rawError, ": ", 2)
		if len(parts) == 2 {
			return fmt.Sprintf("Field '%s': %s", parts[0], parts[1])
		}
	}

	// Default: clean up (root) prefix at minimum
	if strings.HasPrefix(rawError, "(root): ") {
		return strings.TrimPrefix(rawError, "(root): ")
	}
	if strings.HasPrefix(rawError, "(root).") {
		return strings.TrimPrefix(rawError, "(root).")
	}

	return rawError
}
