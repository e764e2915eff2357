package k8sloader

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"
)

// EventType classifies a ConfigMap change delivered on an Event channel.
type EventType string

const (
	EventAdded    EventType = "ADDED"
	EventModified EventType = "MODIFIED"
	EventDeleted  EventType = "DELETED"
)

// Event is a single ConfigMap change observed by Watch.
type Event struct {
	Type      EventType
	ConfigMap *corev1.ConfigMap
}

// Watch opens a Kubernetes watch on ConfigMaps matching labelSelector in
// namespace and translates apimachinery watch.Events into k8sloader
// Events on the returned channel. The channel is closed when ctx is
// cancelled or the underlying watch ends; callers should re-invoke Watch
// to resume (client-go watches are not guaranteed to run forever — the
// API server may close them on its own timeout).
func (c *client) Watch(ctx context.Context, namespace, labelSelector string) (<-chan Event, error) {
	c.logger.Debug("starting configmap watch", "namespace", namespace, "label_selector", labelSelector)

	w, err := c.clientset.CoreV1().ConfigMaps(namespace).Watch(ctx, metav1.ListOptions{
		LabelSelector: labelSelector,
	})
	if err != nil {
		c.logger.Error("failed to start configmap watch", "namespace", namespace, "error", err)
		return nil, wrapK8sError("watch configmaps", err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer w.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.ResultChan():
				if !ok {
					c.logger.Warn("configmap watch channel closed", "namespace", namespace)
					return
				}
				translated, ok := translateWatchEvent(ev)
				if !ok {
					continue
				}
				select {
				case out <- translated:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func translateWatchEvent(ev watch.Event) (Event, bool) {
	cm, ok := ev.Object.(*corev1.ConfigMap)
	if !ok {
		return Event{}, false
	}

	switch ev.Type {
	case watch.Added:
		return Event{Type: EventAdded, ConfigMap: cm}, true
	case watch.Modified:
		return Event{Type: EventModified, ConfigMap: cm}, true
	case watch.Deleted:
		return Event{Type: EventDeleted, ConfigMap: cm}, true
	default:
		return Event{}, false
	}
}
