package ai

import "github.com/pkoukk/tiktoken-go"

const embedEncoding = "o200k_base"

// TruncateTokens shortens input to at most maxTokens tokens so oversized
// documents never blow the embedding model's context window. Inputs within
// the budget come back unchanged; maxTokens <= 0 disables truncation.
func TruncateTokens(input string, maxTokens int) (string, error) {
	if maxTokens <= 0 || input == "" {
		return input, nil
	}
	enc, err := tiktoken.GetEncoding(embedEncoding)
	if err != nil {
		return "", err
	}
	tokens := enc.Encode(input, nil, nil)
	if len(tokens) <= maxTokens {
		return input, nil
	}
	return enc.Decode(tokens[:maxTokens]), nil
}
