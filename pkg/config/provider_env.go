package config

import "os"

// apiKeyEnvVars lists the environment variables checked for the Gemini
// credential, in precedence order.
var apiKeyEnvVars = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

// ResolveAPIKey is the single source of the Gemini credential: environment
// first, then providers.gemini.api_key from config.yaml. An empty result
// means the server must refuse to start.
func ResolveAPIKey(cfg *AppConfig) string {
	for _, name := range apiKeyEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	if cfg == nil {
		return ""
	}
	if gemini, ok := cfg.Providers["gemini"]; ok {
		return gemini["api_key"]
	}
	return ""
}
