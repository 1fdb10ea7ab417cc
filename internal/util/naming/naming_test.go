package naming

import "testing"

func TestNamingFunctions(t *testing.T) {
	cluster := "demo"

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"Network", Network(cluster), "demo"},
		{"VSwitch", VSwitch(cluster), "demo"},
		{"single load balancer", ControlPlaneLoadBalancer(cluster, 0, 1), "demo-controlplane"},
		{"first of two load balancers", ControlPlaneLoadBalancer(cluster, 0, 2), "demo-controlplane-0"},
		{"second of two load balancers", ControlPlaneLoadBalancer(cluster, 1, 2), "demo-controlplane-1"},
		{"Node", Node(cluster, 3), "demo-3"},
		{"WorkerConfig", WorkerConfig(3), "w3.yaml"},
		{"WorkerPatch", WorkerPatch(3), "w3.patch.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.expected)
			}
		})
	}
}
