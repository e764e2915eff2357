package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kspt-johs/disir-go/api/apierrors"
	"github.com/kspt-johs/disir-go/api/middleware"
	"github.com/kspt-johs/disir-go/pkg/disir"
	"github.com/kspt-johs/disir-go/registry"
)

type keyvalDefaultResponse struct {
	Keyval  string `json:"keyval"`
	Version string `json:"version"`
	Value   string `json:"value"`
}

func formatFromContentType(r *http.Request) registry.Format {
	switch r.Header.Get("Content-Type") {
	case "application/json":
		return registry.FormatJSON
	default:
		return registry.FormatYAML
	}
}

func contentTypeFor(format registry.Format) string {
	if format == registry.FormatJSON {
		return "application/json"
	}
	return "application/yaml"
}

// PutMold handles PUT /v1/namespaces/{namespace}/molds/{name}: decode
// the uploaded body (format from Content-Type), finalize it as a Mold,
// store the original bytes in the registry (for retrieval/history) and
// keep the decoded Mold in the Service's in-memory cache (for validating
// future Config uploads).
//
// @Summary Upload a Mold document
// @Tags Molds
// @Router /v1/namespaces/{namespace}/molds/{name} [put]
func (s *Service) PutMold(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	namespace, name := vars["namespace"], vars["name"]
	requestID := middleware.GetRequestID(r.Context())

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

	mold, err := codec.DecodeMold(body)
	if err != nil {
		apierrors.Write(w, apierrors.InvalidDocumentError(err.Error()).WithRequestID(requestID))
		return
	}

	doc := registry.Document{
		Namespace: namespace,
		Name:      name,
		Kind:      registry.KindMold,
		Format:    format,
		Bytes:     body,
	}
	stored, err := s.Store.Put(r.Context(), doc, 0)
	if err != nil {
		s.writeStoreError(w, requestID, err)
		return
	}

	s.cacheMold(namespace, name, mold)

	writeJSON(w, http.StatusOK, moldResponse(stored, mold))
}

// GetMold handles GET /v1/namespaces/{namespace}/molds/{name}.
//
// @Summary Fetch a Mold document
// @Tags Molds
// @Router /v1/namespaces/{namespace}/molds/{name} [get]
func (s *Service) GetMold(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	namespace, name := vars["namespace"], vars["name"]
	requestID := middleware.GetRequestID(r.Context())

	doc, err := s.Store.Get(r.Context(), namespace, name, registry.KindMold)
	if err != nil {
		s.writeStoreError(w, requestID, err)
		return
	}

	mold, ok := s.cachedMold(namespace, name)
	if !ok {
		codec, err := s.serializerFor(doc.Format)
		if err != nil {
			apierrors.Write(w, apierrors.InternalError(err.Error()).WithRequestID(requestID))
			return
		}
		mold, err = codec.DecodeMold(doc.Bytes)
		if err != nil {
			apierrors.Write(w, apierrors.InternalError("stored mold failed to decode: "+err.Error()).WithRequestID(requestID))
			return
		}
		s.cacheMold(namespace, name, mold)
	}

	writeJSON(w, http.StatusOK, moldResponse(doc, mold))
}

type moldResponseBody struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	Revision  int64  `json:"revision"`
}

func moldResponse(doc registry.Document, mold *disir.Mold) moldResponseBody {
	return moldResponseBody{
		Namespace: doc.Namespace,
		Name:      doc.Name,
		Version:   mold.Version().String(),
		Revision:  doc.Revision,
	}
}

// GetKeyvalDefault handles
// GET /v1/namespaces/{namespace}/molds/{name}/defaults/{keyval}?version=X:
// resolve the named top-level Keyval's effective default at the given
// Mold version. Goes through s.Resolver when configured, so repeated
// lookups for the same (keyval, version) don't re-walk the Mold tree
// on every request.
//
// @Summary Resolve a Keyval's effective default at a Mold version
// @Tags Molds
// @Router /v1/namespaces/{namespace}/molds/{name}/defaults/{keyval} [get]
func (s *Service) GetKeyvalDefault(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	namespace, name, keyvalName := vars["namespace"], vars["name"], vars["keyval"]
	requestID := middleware.GetRequestID(r.Context())

	versionParam := r.URL.Query().Get("version")
	if versionParam == "" {
		apierrors.Write(w, apierrors.ValidationError("query parameter \"version\" is required").WithRequestID(requestID))
		return
	}
	target, err := disir.ParseVersion(versionParam)
	if err != nil {
		apierrors.Write(w, apierrors.ValidationError("invalid version: "+err.Error()).WithRequestID(requestID))
		return
	}

	mold, ok := s.cachedMold(namespace, name)
	if !ok {
		doc, err := s.Store.Get(r.Context(), namespace, name, registry.KindMold)
		if err != nil {
			s.writeStoreError(w, requestID, err)
			return
		}
		codec, err := s.serializerFor(doc.Format)
		if err != nil {
			apierrors.Write(w, apierrors.InternalError(err.Error()).WithRequestID(requestID))
			return
		}
		mold, err = codec.DecodeMold(doc.Bytes)
		if err != nil {
			apierrors.Write(w, apierrors.InternalError("stored mold failed to decode: "+err.Error()).WithRequestID(requestID))
			return
		}
		s.cacheMold(namespace, name, mold)
	}

	elementCtx, err := mold.Context().FindElement(keyvalName)
	if err != nil {
		apierrors.Write(w, apierrors.NotFoundError("keyval "+keyvalName).WithRequestID(requestID))
		return
	}
	defer elementCtx.PutContext()

	var value disir.Value
	if s.Resolver != nil {
		kv, err := disir.KeyvalFromContext(elementCtx)
		if err != nil {
			apierrors.Write(w, apierrors.ValidationError(err.Error()).WithRequestID(requestID))
			return
		}
		moldPath := namespace + "/" + name + "/" + keyvalName
		value, ok, err = s.Resolver.ResolveDefault(r.Context(), moldPath, kv, target)
		if err != nil {
			apierrors.Write(w, apierrors.InternalError(err.Error()).WithRequestID(requestID))
			return
		}
	} else {
		value, ok = elementCtx.DefaultAt(target)
	}
	if !ok {
		apierrors.Write(w, apierrors.NotFoundError("default for "+keyvalName+" at or before version "+target.String()).WithRequestID(requestID))
		return
	}

	writeJSON(w, http.StatusOK, keyvalDefaultResponse{
		Keyval:  keyvalName,
		Version: target.String(),
		Value:   value.Format(),
	})
}

func (s *Service) writeStoreError(w http.ResponseWriter, requestID string, err error) {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		apierrors.Write(w, apierrors.NotFoundError("document").WithRequestID(requestID))
	case errors.Is(err, registry.ErrConflict):
		apierrors.Write(w, apierrors.ConflictError("document revision has changed since it was read").WithRequestID(requestID))
	default:
		apierrors.Write(w, apierrors.InternalError(err.Error()).WithRequestID(requestID))
	}
}
