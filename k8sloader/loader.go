package k8sloader

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"

	"github.com/kspt-johs/disir-go/registry"
)

// Label and data-key conventions a ConfigMap must follow to be picked up
// as a disir document source.
const (
	// LabelKind selects "mold" or "config", mirroring registry.DocumentKind.
	LabelKind = "disir.io/kind"
	// LabelNamespace is the disir namespace the document belongs to —
	// distinct from the Kubernetes namespace the ConfigMap lives in.
	LabelNamespace = "disir.io/namespace"
	// LabelName is the disir document name within its namespace.
	LabelName = "disir.io/name"
	// DataKeyYAML is the ConfigMap data key holding the YAML-encoded
	// document body, checked before DataKeyJSON.
	DataKeyYAML = "document.yaml"
	// DataKeyJSON is the ConfigMap data key holding the JSON-encoded
	// document body.
	DataKeyJSON = "document.json"
)

// Loader turns ConfigMaps matching a label selector into registry.Document
// values, for ingestion into a registry.Store, and streams subsequent
// changes via Client.Watch.
type Loader struct {
	client        Client
	k8sNamespace  string
	labelSelector string
}

// NewLoader builds a Loader that discovers ConfigMaps in k8sNamespace
// (the Kubernetes namespace, not a disir namespace) matching
// labelSelector. labelSelector should normally include
// "disir.io/kind" so ListConfigMaps doesn't pick up unrelated ConfigMaps.
func NewLoader(client Client, k8sNamespace, labelSelector string) *Loader {
	return &Loader{client: client, k8sNamespace: k8sNamespace, labelSelector: labelSelector}
}

// Load fetches all matching ConfigMaps and decodes them into documents.
// A ConfigMap missing required labels or a recognized data key is
// skipped rather than failing the whole load, since a cluster operator
// may have other ConfigMaps sharing the namespace.
func (l *Loader) Load(ctx context.Context) ([]registry.Document, error) {
	cms, err := l.client.ListConfigMaps(ctx, l.k8sNamespace, l.labelSelector)
	if err != nil {
		return nil, fmt.Errorf("list configmaps: %w", err)
	}

	docs := make([]registry.Document, 0, len(cms))
	for i := range cms {
		doc, ok := decodeConfigMap(&cms[i])
		if ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// WatchDocuments streams decoded documents as their source ConfigMaps
// change. A deletion is reported with an empty Bytes field and the
// caller is expected to treat it as a delete-by-(Namespace,Name,Kind).
func (l *Loader) WatchDocuments(ctx context.Context) (<-chan DocumentEvent, error) {
	events, err := l.client.Watch(ctx, l.k8sNamespace, l.labelSelector)
	if err != nil {
		return nil, err
	}

	out := make(chan DocumentEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				doc, decoded := decodeConfigMap(ev.ConfigMap)
				if !decoded {
					continue
				}
				if ev.Type == EventDeleted {
					doc.Bytes = nil
				}
				select {
				case out <- DocumentEvent{Type: ev.Type, Document: doc}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// DocumentEvent pairs a watch EventType with the document it decoded
// from the triggering ConfigMap.
type DocumentEvent struct {
	Type     EventType
	Document registry.Document
}

func decodeConfigMap(cm *corev1.ConfigMap) (registry.Document, bool) {
	kind := registry.DocumentKind(cm.Labels[LabelKind])
	if kind != registry.KindMold && kind != registry.KindConfig {
		return registry.Document{}, false
	}
	namespace := cm.Labels[LabelNamespace]
	name := cm.Labels[LabelName]
	if namespace == "" || name == "" {
		return registry.Document{}, false
	}

	if data, ok := cm.Data[DataKeyYAML]; ok {
		return registry.Document{
			Namespace: namespace,
			Name:      name,
			Kind:      kind,
			Format:    registry.FormatYAML,
			Bytes:     []byte(data),
		}, true
	}
	if data, ok := cm.Data[DataKeyJSON]; ok {
		return registry.Document{
			Namespace: namespace,
			Name:      name,
			Kind:      kind,
			Format:    registry.FormatJSON,
			Bytes:     []byte(data),
		}, true
	}
	return registry.Document{}, false
}
