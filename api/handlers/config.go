package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/kspt-johs/disir-go/api/apierrors"
	"github.com/kspt-johs/disir-go/api/middleware"
	"github.com/kspt-johs/disir-go/api/verdictbus"
	"github.com/kspt-johs/disir-go/pkg/disir"
	"github.com/kspt-johs/disir-go/registry"
)

// PutConfig handles PUT /v1/namespaces/{namespace}/configs/{name}:
// decode the body against the namespace's stored Mold, validate it, and
// persist it regardless of verdict (an Invalid config is still a
// legitimate write — disir.Validate's job is to report, not to gate).
// Publishes the resulting verdict to any websocket watchers.
//
// @Summary Upload and validate a Config document
// @Tags Configs
// @Router /v1/namespaces/{namespace}/configs/{name} [put]
func (s *Service) PutConfig(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	namespace, name := vars["namespace"], vars["name"]
	requestID := middleware.GetRequestID(r.Context())

	mold, ok := s.cachedMold(namespace, name)
	if !ok {
		moldDoc, err := s.Store.Get(r.Context(), namespace, name, registry.KindMold)
		if err != nil {
			s.writeStoreError(w, requestID, err)
			return
		}
		codec, err := s.serializerFor(moldDoc.Format)
		if err != nil {
			apierrors.Write(w, apierrors.InternalError(err.Error()).WithRequestID(requestID))
			return
		}
		mold, err = codec.DecodeMold(moldDoc.Bytes)
		if err != nil {
			apierrors.Write(w, apierrors.InternalError("stored mold failed to decode: "+err.Error()).WithRequestID(requestID))
			return
		}
		s.cacheMold(namespace, name, mold)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		apierrors.Write(w, apierrors.ValidationError("could not read request body").WithRequestID(requestID))
		return
	}

	format := formatFromContentType(r)
	codec, err := s.serializerFor(format)
	if err != nil {
		apierrors.Write(w, apierrors.ValidationError(err.Error()).WithRequestID(requestID))
		return
	}

	cfg, err := codec.DecodeConfig(body, mold)
	if err != nil {
		apierrors.Write(w, apierrors.InvalidDocumentError(err.Error()).WithRequestID(requestID))
		return
	}

	status, entries := s.validate(cfg)

	doc := registry.Document{
		Namespace: namespace,
		Name:      name,
		Kind:      registry.KindConfig,
		Format:    format,
		Bytes:     body,
	}
	stored, err := s.Store.Put(r.Context(), doc, 0)
	if err != nil {
		s.writeStoreError(w, requestID, err)
		return
	}

	s.Bus.Publish(verdictbus.Verdict{
		Namespace: namespace,
		Name:      name,
		Status:    status.String(),
		Entries:   toWireEntries(entries),
	})

	writeJSON(w, http.StatusOK, configResponse{
		Namespace: stored.Namespace,
		Name:      stored.Name,
		Revision:  stored.Revision,
		Status:    status.String(),
		Entries:   toWireEntries(entries),
	})
}

// GetConfig handles GET /v1/namespaces/{namespace}/configs/{name}.
//
// @Summary Fetch a stored Config document's raw bytes
// @Tags Configs
// @Router /v1/namespaces/{namespace}/configs/{name} [get]
func (s *Service) GetConfig(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	namespace, name := vars["namespace"], vars["name"]
	requestID := middleware.GetRequestID(r.Context())

	doc, err := s.Store.Get(r.Context(), namespace, name, registry.KindConfig)
	if err != nil {
		s.writeStoreError(w, requestID, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(doc.Format))
	w.Header().Set("X-Document-Revision", strconv.FormatInt(doc.Revision, 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Bytes)
}

// ValidateConfig handles GET /v1/namespaces/{namespace}/configs/{name}/validate:
// re-run Validate against the stored config without requiring a new
// upload, for dashboards polling a config's current status.
//
// @Summary Re-validate a stored Config document
// @Tags Configs
// @Router /v1/namespaces/{namespace}/configs/{name}/validate [get]
func (s *Service) ValidateConfig(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	namespace, name := vars["namespace"], vars["name"]
	requestID := middleware.GetRequestID(r.Context())

	mold, ok := s.cachedMold(namespace, name)
	if !ok {
		moldDoc, err := s.Store.Get(r.Context(), namespace, name, registry.KindMold)
		if err != nil {
			s.writeStoreError(w, requestID, err)
			return
		}
		codec, err := s.serializerFor(moldDoc.Format)
		if err != nil {
			apierrors.Write(w, apierrors.InternalError(err.Error()).WithRequestID(requestID))
			return
		}
		mold, err = codec.DecodeMold(moldDoc.Bytes)
		if err != nil {
			apierrors.Write(w, apierrors.InternalError(err.Error()).WithRequestID(requestID))
			return
		}
		s.cacheMold(namespace, name, mold)
	}

	configDoc, err := s.Store.Get(r.Context(), namespace, name, registry.KindConfig)
	if err != nil {
		s.writeStoreError(w, requestID, err)
		return
	}

	codec, err := s.serializerFor(configDoc.Format)
	if err != nil {
		apierrors.Write(w, apierrors.InternalError(err.Error()).WithRequestID(requestID))
		return
	}
	cfg, err := codec.DecodeConfig(configDoc.Bytes, mold)
	if err != nil {
		apierrors.Write(w, apierrors.InternalError("stored config failed to decode: "+err.Error()).WithRequestID(requestID))
		return
	}

	status, entries := s.validate(cfg)

	writeJSON(w, http.StatusOK, configResponse{
		Namespace: namespace,
		Name:      name,
		Revision:  configDoc.Revision,
		Status:    status.String(),
		Entries:   toWireEntries(entries),
	})
}

func (s *Service) validate(cfg *disir.Config) (disir.Status, []disir.ValidationEntry) {
	start := time.Now()
	status, entries := disir.Validate(cfg)
	if s.Metrics != nil {
		s.Metrics.Validation.RecordValidation(status.String(), time.Since(start))
	}
	return status, entries
}

type configResponse struct {
	Namespace string             `json:"namespace"`
	Name      string             `json:"name"`
	Revision  int64              `json:"revision"`
	Status    string             `json:"status"`
	Entries   []verdictbus.Entry `json:"entries,omitempty"`
}

func toWireEntries(entries []disir.ValidationEntry) []verdictbus.Entry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]verdictbus.Entry, len(entries))
	for i, e := range entries {
		out[i] = verdictbus.Entry{Path: e.Path, Status: e.Status.String(), Message: e.Message}
	}
	return out
}
