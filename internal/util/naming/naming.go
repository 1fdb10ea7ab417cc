package naming

import "fmt"

func Network(cluster string) string {
	return cluster
}

// VSwitch is also the match key on Robot, which has no labels.
func VSwitch(cluster string) string {
	return cluster
}

// ControlPlaneLoadBalancer names the index-th of count load balancers.
// A single load balancer carries no index suffix.
func ControlPlaneLoadBalancer(cluster string, index, count int) string {
	base := fmt.Sprintf("%s-controlplane", cluster)
	if count <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, index)
}

func Node(cluster string, ordinal int) string {
	return fmt.Sprintf("%s-%d", cluster, ordinal)
}

// WorkerConfig is the machine config file of a bare-metal node.
func WorkerConfig(ordinal int) string {
	return fmt.Sprintf("w%d.yaml", ordinal)
}

// WorkerPatch is the rendered per-node override patch.
func WorkerPatch(ordinal int) string {
	return fmt.Sprintf("w%d.patch.yaml", ordinal)
}
