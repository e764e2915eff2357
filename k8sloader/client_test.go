package k8sloader

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
)

func createTestConfigMap(name, namespace string, labels map[string]string, data map[string]string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    labels,
		},
		Data: data,
	}
}

func createFakeClient(cms ...*corev1.ConfigMap) *client {
	objects := make([]runtime.Object, len(cms))
	for i, cm := range cms {
		objects[i] = cm
	}
	fakeClientset := fake.NewSimpleClientset(objects...)
	return &client{
		clientset: fakeClientset,
		config:    DefaultConfig(),
		logger:    DefaultConfig().Logger,
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, 3, config.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, config.RetryBackoff)
	assert.Equal(t, 5*time.Second, config.MaxRetryBackoff)
	assert.NotNil(t, config.Logger)
}

func TestListConfigMaps_Success(t *testing.T) {
	cm1 := createTestConfigMap("cm-1", "default", map[string]string{"disir.io/kind": "mold"}, map[string]string{"document.yaml": "name: foo"})
	cm2 := createTestConfigMap("cm-2", "default", map[string]string{"disir.io/kind": "mold"}, nil)

	c := createFakeClient(cm1, cm2)

	cms, err := c.ListConfigMaps(context.Background(), "default", "disir.io/kind=mold")

	require.NoError(t, err)
	assert.Len(t, cms, 2)

	names := []string{cms[0].Name, cms[1].Name}
	assert.Contains(t, names, "cm-1")
	assert.Contains(t, names, "cm-2")
}

func TestListConfigMaps_EmptyResult(t *testing.T) {
	c := createFakeClient()

	cms, err := c.ListConfigMaps(context.Background(), "default", "disir.io/kind=mold")

	require.NoError(t, err)
	assert.Len(t, cms, 0)
}

func TestGetConfigMap_Success(t *testing.T) {
	cm1 := createTestConfigMap("cm-1", "default", map[string]string{"disir.io/kind": "mold"}, map[string]string{"document.yaml": "name: foo"})

	c := createFakeClient(cm1)

	cm, err := c.GetConfigMap(context.Background(), "default", "cm-1")

	require.NoError(t, err)
	assert.NotNil(t, cm)
	assert.Equal(t, "cm-1", cm.Name)
	assert.Equal(t, "name: foo", cm.Data["document.yaml"])
}

func TestGetConfigMap_NotFound(t *testing.T) {
	c := createFakeClient()

	cm, err := c.GetConfigMap(context.Background(), "default", "nonexistent")

	assert.Nil(t, cm)
	assert.Error(t, err)

	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestListConfigMaps_ContextCancelled(t *testing.T) {
	c := createFakeClient()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cms, err := c.ListConfigMaps(ctx, "default", "")

	assert.Nil(t, cms)
	assert.Error(t, err)

	var timeoutErr *TimeoutError
	assert.ErrorAs(t, err, &timeoutErr)
}

func TestClose_MultipleCalls(t *testing.T) {
	c := createFakeClient()

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestRetryLogic_ImmediateSuccess(t *testing.T) {
	c := createFakeClient()

	attempts := 0
	err := c.retryWithBackoff(context.Background(), func() error {
		attempts++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryLogic_EventualSuccess(t *testing.T) {
	c := createFakeClient()

	attempts := 0
	err := c.retryWithBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("transient error")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryLogic_ExhaustedRetries(t *testing.T) {
	c := createFakeClient()

	attempts := 0
	err := c.retryWithBackoff(context.Background(), func() error {
		attempts++
		return fmt.Errorf("persistent error")
	})

	assert.Error(t, err)
	assert.Equal(t, c.config.MaxRetries+1, attempts)
}

func TestWatch_DeliversAddedEvent(t *testing.T) {
	fakeClientset := fake.NewSimpleClientset()
	c := &client{clientset: fakeClientset, config: DefaultConfig(), logger: DefaultConfig().Logger}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events, err := c.Watch(ctx, "default", "")
	require.NoError(t, err)

	cm := createTestConfigMap("cm-new", "default", map[string]string{"disir.io/kind": "mold"}, map[string]string{"document.yaml": "name: foo"})
	_, err = fakeClientset.CoreV1().ConfigMaps("default").Create(ctx, cm, metav1.CreateOptions{})
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, EventAdded, ev.Type)
		assert.Equal(t, "cm-new", ev.ConfigMap.Name)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}
}
