package ai

// DefaultMetisBaseURL is Metis's OpenAI-compatible gateway.
const DefaultMetisBaseURL = "https://api.metisai.ir/openai/v1"

// NewMetisAdapter talks to Metis through the OpenAI-compatible client.
// Authorization is the same bearer scheme with METIS_API_KEY.
func NewMetisAdapter(apiKey, baseURL, model string, maxOut int) (*OpenAIAdapter, error) {
	if baseURL == "" {
		baseURL = DefaultMetisBaseURL
	}
	return newOpenAICompatible(ProviderMetis, apiKey, baseURL, model, maxOut)
}
