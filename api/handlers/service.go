// Package handlers implements disir-server's HTTP request handlers:
// mold/config CRUD against a registry.Store, on-demand validation, and
// a websocket verdict stream. Grounded on the teacher's
// cmd/server/handlers package (handler-per-resource, constructor taking
// its collaborators, Service a thin façade gluing them together).
package handlers

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/kspt-johs/disir-go/api/verdictbus"
	"github.com/kspt-johs/disir-go/pkg/disir"
	"github.com/kspt-johs/disir-go/pkg/disirmetrics"
	"github.com/kspt-johs/disir-go/plugins/jsonserializer"
	"github.com/kspt-johs/disir-go/plugins/yamlserializer"
	"github.com/kspt-johs/disir-go/registry"
	"github.com/kspt-johs/disir-go/resolvercache"
)

// Service bundles the collaborators every handler needs: the
// registry.Store of record, the two serializer plugins, a cache of
// decoded Molds (so Config uploads don't have to re-decode their Mold
// on every request), the verdict bus, metrics and a logger.
type Service struct {
	Store   registry.Store
	YAML    *yamlserializer.Serializer
	JSON    *jsonserializer.Serializer
	Metrics *disirmetrics.Registry
	Bus     *verdictbus.Bus
	Logger  *slog.Logger

	// Resolver accelerates GetKeyvalDefault's version-window lookups.
	// Nil is valid (serve leaves it nil unless resolver.enabled is set);
	// GetKeyvalDefault falls back to walking the Mold directly.
	Resolver *resolvercache.Resolver

	moldsMu sync.RWMutex
	molds   map[string]*disir.Mold // key: namespace/name
}

// NewService constructs a Service. strict controls whether the
// serializer plugins reject unknown fields (set false for lenient
// decoding of documents produced by older disirctl versions).
func NewService(store registry.Store, metrics *disirmetrics.Registry, bus *verdictbus.Bus, logger *slog.Logger, strict bool) *Service {
	return &Service{
		Store:   store,
		YAML:    yamlserializer.New(strict),
		JSON:    jsonserializer.New(strict),
		Metrics: metrics,
		Bus:     bus,
		Logger:  logger,
		molds:   make(map[string]*disir.Mold),
	}
}

func moldKey(namespace, name string) string { return namespace + "/" + name }

func (s *Service) cacheMold(namespace, name string, mold *disir.Mold) {
	s.moldsMu.Lock()
	defer s.moldsMu.Unlock()
	s.molds[moldKey(namespace, name)] = mold
}

func (s *Service) cachedMold(namespace, name string) (*disir.Mold, bool) {
	s.moldsMu.RLock()
	defer s.moldsMu.RUnlock()
	mold, ok := s.molds[moldKey(namespace, name)]
	return mold, ok
}

// serializerFor picks a serializer by registry.Format.
func (s *Service) serializerFor(format registry.Format) (moldDecoder, error) {
	switch format {
	case registry.FormatYAML:
		return s.YAML, nil
	case registry.FormatJSON:
		return s.JSON, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// moldDecoder is the subset of yamlserializer/jsonserializer.Serializer
// both handlers need, letting mold.go/config.go stay format-agnostic.
type moldDecoder interface {
	DecodeMold(data []byte) (*disir.Mold, error)
	DecodeConfig(data []byte, mold *disir.Mold) (*disir.Config, error)
	EncodeMold(mold *disir.Mold) ([]byte, error)
	EncodeConfig(cfg *disir.Config) ([]byte, error)
}
