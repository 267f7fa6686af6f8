// Package provider defines the generator backends used by the translation client.
package provider

import (
	"strings"

	"github.com/ZaguanLabs/doclai"
)

// Generator is an alias to the main package interface for convenience.
type Generator = doclai.Generator

// Prompt is an alias to the main package type.
type Prompt = doclai.Prompt

// Names of the supported backends, as used in configuration.
const (
	NameOpenAI = "openai"
	NameOllama = "ollama"
	NameGemini = "gemini"
	NameLambda = "lambda"
	NameMock   = "mock"
)

// isRetryableError reports whether an error message looks transient.
func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"connection reset",
		"temporary",
		"unavailable",
		"resource_exhausted",
		"toomanyrequests",
		"503",
		"502",
		"500",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
