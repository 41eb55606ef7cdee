// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import "regexp"

// redactionPattern pairs a secret-matching regex with a labeled
// replacement so a log reader knows what was removed without seeing it.
type redactionPattern struct {
	pattern     *regexp.Regexp
	replacement string
}

// Order matters: the more specific prefix patterns must run before the
// generic "sk-" one so a key is not partially redacted.
var redactionPatterns = []redactionPattern{
	{
		pattern:     regexp.MustCompile(`sk-proj-[A-Za-z0-9_-]{20,}`),
		replacement: "[REDACTED:openai_project_key]",
	},
	{
		pattern:     regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
		replacement: "[REDACTED:openai_key]",
	},
	{
		pattern:     regexp.MustCompile(`Bearer\s+[A-Za-z0-9._-]{10,}`),
		replacement: "[REDACTED:bearer_token]",
	},
	{
		pattern:     regexp.MustCompile(`api[_-]?key=[A-Za-z0-9._-]{10,}`),
		replacement: "api_key=[REDACTED]",
	},
}

// RedactSecrets removes API keys and tokens from text before it reaches a
// log line. Collaborator errors can echo request headers verbatim, so every
// error string logged by this package goes through here first.
func RedactSecrets(text string) string {
	for _, p := range redactionPatterns {
		text = p.pattern.ReplaceAllString(text, p.replacement)
	}
	return text
}
