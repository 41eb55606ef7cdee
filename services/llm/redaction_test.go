// Copyright (C) 2026 Samantha Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"strings"
	"testing"
)

func TestRedactSecrets(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		keep    string
		secrets []string
	}{
		{
			name:    "openai key",
			in:      "401 unauthorized: invalid key sk-abcdefghijklmnopqrstuvwx provided",
			keep:    "401 unauthorized",
			secrets: []string{"sk-abcdefghijklmnopqrstuvwx"},
		},
		{
			name:    "project key not partially redacted",
			in:      "key sk-proj-abcdefghijklmnopqrstuvwx rejected",
			keep:    "[REDACTED:openai_project_key]",
			secrets: []string{"sk-proj-abcdefghijklmnopqrstuvwx"},
		},
		{
			name:    "bearer token",
			in:      "request header Authorization: Bearer abc123def456ghi failed",
			keep:    "request header",
			secrets: []string{"abc123def456ghi"},
		},
		{
			name:    "query parameter",
			in:      "GET /v1/complete?api_key=abcdef1234567890 returned 403",
			keep:    "returned 403",
			secrets: []string{"abcdef1234567890"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RedactSecrets(tc.in)
			if !strings.Contains(got, tc.keep) {
				t.Errorf("redaction removed surrounding context: %q", got)
			}
			for _, secret := range tc.secrets {
				if strings.Contains(got, secret) {
					t.Errorf("secret %q survived redaction: %q", secret, got)
				}
			}
		})
	}
}

func TestRedactSecretsLeavesPlainTextAlone(t *testing.T) {
	in := "connection refused to api.openai.com:443"
	if got := RedactSecrets(in); got != in {
		t.Errorf("RedactSecrets(%q) = %q", in, got)
	}
}
