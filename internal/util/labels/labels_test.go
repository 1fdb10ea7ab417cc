package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLabelBuilder(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		clusterName string
	}{
		{"simple cluster name", "my-cluster"},
		{"single word", "production"},
		{"with numbers", "cluster-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			labels := NewLabelBuilder(tt.clusterName).Build()

			assert.Equal(t, tt.clusterName, labels[KeyCluster])
			assert.Equal(t, ManagedByTalhybrid, labels[KeyManagedBy])
			assert.Len(t, labels, 2)
		})
	}
}

func TestWithRole(t *testing.T) {
	t.Parallel()
	labels := NewLabelBuilder("demo").WithRole(RoleControlPlane).Build()

	assert.Equal(t, "controlplane", labels[KeyRole])
	assert.Equal(t, "demo", labels[KeyCluster])
}

func TestNewImageLabelBuilder(t *testing.T) {
	t.Parallel()
	labels := NewImageLabelBuilder("abc-v1.10.3").Build()

	assert.Equal(t, "abc-v1.10.3", labels[KeyImage])
	assert.NotContains(t, labels, KeyCluster)
}

func TestBuild_ReturnsCopy(t *testing.T) {
	t.Parallel()
	lb := NewLabelBuilder("demo")
	first := lb.Build()
	first["mutated"] = "yes"

	assert.NotContains(t, lb.Build(), "mutated")
}

func TestMerge(t *testing.T) {
	t.Parallel()
	labels := NewLabelBuilder("demo").Merge(map[string]string{"env": "prod"}).Build()

	assert.Equal(t, "prod", labels["env"])
}

func TestSelector(t *testing.T) {
	t.Parallel()
	labels := NewLabelBuilder("demo").WithRole(RoleControlPlane).Build()

	assert.Equal(t,
		"talhybrid/cluster=demo,talhybrid/managed-by=talhybrid,talhybrid/role=controlplane",
		Selector(labels))
	assert.Equal(t, "", Selector(nil))
}

func TestSelectorHelpers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "talhybrid/cluster=demo", SelectorForCluster("demo"))
	assert.Equal(t, "talhybrid/cluster=demo,talhybrid/role=controlplane", SelectorForRole("demo", RoleControlPlane))
	assert.Equal(t, "talhybrid/image=abc-v1.10.3", SelectorForImage("abc-v1.10.3"))
	assert.Equal(t, "type=controlplane", TargetSelector(RoleControlPlane))
}
