/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fenceRE = regexp.MustCompile("(?i)```json\\s*|```\\s*")

// CleanJSONResponse recovers a JSON object from model output that may be
// wrapped in markdown fences or surrounded by prose. Models ignore "JSON
// only" instructions often enough that this is the normal path, not the
// exceptional one.
func CleanJSONResponse(response string) (Content, error) {
	cleaned := strings.TrimSpace(fenceRE.ReplaceAllString(response, ""))

	if extracted := extractJSONObject(cleaned); extracted != "" {
		cleaned = extracted
	}

	var content Content
	if err := json.Unmarshal([]byte(cleaned), &content); err != nil {
		return Content{}, fmt.Errorf("failed to parse JSON from AI response: %w", err)
	}
	return content, nil
}

// extractJSONObject returns the outermost {...} span, or "" when none exists.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return text[start : end+1]
}
