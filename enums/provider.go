package enums

// Provider names a language model backend used by the labeling stage.
type Provider string

const (
	ProviderInvalid Provider = ""
	ProviderOllama  Provider = "ollama"
	ProviderOpenAI  Provider = "openai"
	ProviderGemini  Provider = "gemini"
)

func ParseProvider(s string) Provider {
	switch Provider(s) {
	case ProviderOllama, ProviderOpenAI, ProviderGemini:
		return Provider(s)
	}
	return ProviderInvalid
}
