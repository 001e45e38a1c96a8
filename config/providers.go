package config

import "strings"

// defaultExternalProviderNames is the ordered catalog of credential names
// shown on the external providers page.
var defaultExternalProviderNames = []string{
	"AI21_API_KEY",
	"ALEPH_ALPHA_API_KEY",
	"ANYSCALE_SERVICE_URL",
	"ANYSCALE_SERVICE_ROUTE",
	"ANYSCALE_SERVICE_TOKEN",
	"AVIARY_URL",
	"AVIARY_TOKEN",
	"BANANA_API_KEY",
	"BEAM_CLIENT_ID",
	"BEAM_CLIENT_SECRET",
	"COHERE_API_KEY",
	"DATABRICKS_HOST",
	"DATABRICKS_API_TOKEN",
	"DEEPINFRA_API_TOKEN",
	"FOREFRONTAI_API_KEY",
	"GOOGLE_API_KEY",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"GOOSEAI_API_KEY",
	"HUGGINGFACE_API_KEY",
	"HUGGINGFACEHUB_API_TOKEN",
	"MOSAICML_API_TOKEN",
	"NLPCLOUD_API_KEY",
	"OPENAI_API_KEY",
	"REPLICATE_API_TOKEN",
	"STOCHASTICAI_API_KEY",
	"TEXT_GENERATION_INFERENCE_TOKEN",
	"WRITER_API_KEY",
	"WRITER_ORG_ID",
}

// DefaultExternalProviderNames returns a copy of the built-in catalog.
func DefaultExternalProviderNames() []string {
	out := make([]string, len(defaultExternalProviderNames))
	copy(out, defaultExternalProviderNames)
	return out
}

// parseNameList splits a comma-separated list, dropping blanks.
func parseNameList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func externalProviderNames() []string {
	if names := parseNameList(getEnv("EXTERNAL_PROVIDER_NAMES", "")); len(names) > 0 {
		return names
	}
	return DefaultExternalProviderNames()
}
