package domain

// ProviderKind groups providers by the capability they serve.
type ProviderKind string

// Provider kinds.
const (
	ProviderKindOCR         ProviderKind = "ocr"
	ProviderKindLanguage    ProviderKind = "language"
	ProviderKindLLM         ProviderKind = "llm"
	ProviderKindTranslation ProviderKind = "translation"
	ProviderKindStorage     ProviderKind = "storage"
)

// ProviderStatus reports whether one provider is usable.
type ProviderStatus struct {
	Name      string       `json:"name"`
	Kind      ProviderKind `json:"kind"`
	Available bool         `json:"available"`
	Detail    string       `json:"detail,omitempty"`
}

// SystemStatus is the snapshot served by the status endpoint.
type SystemStatus struct {
	Version   string           `json:"version"`
	Providers []ProviderStatus `json:"providers"`
}

// Available reports whether at least one provider of the kind is usable.
func (s SystemStatus) Available(kind ProviderKind) bool {
	for _, p := range s.Providers {
		if p.Kind == kind && p.Available {
			return true
		}
	}
	return false
}
