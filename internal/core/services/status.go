package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/clausewise/internal/core/domain"
	"github.com/custodia-labs/clausewise/internal/core/ports/driven"
	"github.com/custodia-labs/clausewise/internal/core/ports/driving"
)

// Ensure StatusService implements the interface.
var _ driving.StatusService = (*StatusService)(nil)

// pingTimeout bounds each provider probe.
const pingTimeout = 5 * time.Second

// probe is one provider to report on.
type probe struct {
	name string
	kind domain.ProviderKind
	impl any
}

// StatusService reports which providers are configured and reachable.
type StatusService struct {
	version string
	probes  []probe
}

// NewStatusService creates a status service for the given build version.
func NewStatusService(version string) *StatusService {
	return &StatusService{version: version}
}

// AddOCR registers OCR providers.
func (s *StatusService) AddOCR(providers ...driven.OCRProvider) {
	for _, p := range providers {
		s.probes = append(s.probes, probe{name: p.Name(), kind: domain.ProviderKindOCR, impl: p})
	}
}

// AddLanguage registers language detectors.
func (s *StatusService) AddLanguage(detectors ...driven.LanguageDetector) {
	for _, d := range detectors {
		s.probes = append(s.probes, probe{name: d.Name(), kind: domain.ProviderKindLanguage, impl: d})
	}
}

// AddTranslator registers the translator. A nil translator is reported as absent.
func (s *StatusService) AddTranslator(t driven.Translator) {
	if t == nil {
		s.probes = append(s.probes, probe{name: "none", kind: domain.ProviderKindTranslation})
		return
	}
	s.probes = append(s.probes, probe{name: t.Name(), kind: domain.ProviderKindTranslation, impl: t})
}

// AddLLM registers the generative provider. A nil provider is reported as absent.
func (s *StatusService) AddLLM(llm driven.LLMService) {
	if llm == nil {
		s.probes = append(s.probes, probe{name: "none", kind: domain.ProviderKindLLM})
		return
	}
	s.probes = append(s.probes, probe{name: llm.ModelName(), kind: domain.ProviderKindLLM, impl: llm})
}

// AddStorage registers a store that can be pinged.
func (s *StatusService) AddStorage(name string, store driven.Pinger) {
	s.probes = append(s.probes, probe{name: name, kind: domain.ProviderKindStorage, impl: store})
}

// Status probes every registered provider concurrently.
func (s *StatusService) Status(ctx context.Context) domain.SystemStatus {
	statuses := make([]domain.ProviderStatus, len(s.probes))
	var wg sync.WaitGroup
	for i, p := range s.probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses[i] = check(ctx, p)
		}()
	}
	wg.Wait()
	return domain.SystemStatus{Version: s.version, Providers: statuses}
}

func check(ctx context.Context, p probe) domain.ProviderStatus {
	st := domain.ProviderStatus{Name: p.name, Kind: p.kind}
	if p.impl == nil {
		st.Detail = "not configured"
		return st
	}
	pinger, ok := p.impl.(driven.Pinger)
	if !ok {
		st.Available = true
		st.Detail = "configured"
		return st
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pinger.Ping(ctx); err != nil {
		st.Detail = err.Error()
		return st
	}
	st.Available = true
	st.Detail = "reachable"
	return st
}
