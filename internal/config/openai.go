package config

// GetOpenAIKey returns the OpenAI key, or "" when the completion
// fallback is not configured
func GetOpenAIKey() string {
	return GetEnvOrDefault("OPENAI_KEY", "")
}

// GetOpenAIModel returns the model used for non-streaming completions
func GetOpenAIModel() string {
	return GetEnvOrDefault("OPENAI_MODEL", "gpt-4-turbo")
}
