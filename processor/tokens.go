package processor

// EstimateTokens estimates the token count for a text.
// Uses a simple heuristic: ~4 bytes per token.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	tokens := len(text) / 4
	if tokens == 0 {
		tokens = 1
	}
	return tokens
}
