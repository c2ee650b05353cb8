package podview

import (
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
)

// Pod is a pod record as served by the pod API. The view only ever touches
// Status, Address and NodePort.
type Pod struct {
	Name      string         `json:"name" yaml:"name"`
	Namespace string         `json:"namespace" yaml:"namespace,omitempty"`
	Status    string         `json:"status" yaml:"status"`
	Image     string         `json:"image" yaml:"image"`
	CreatedAt string         `json:"createdAt" yaml:"createdAt,omitempty"`
	Address   string         `json:"podIP" yaml:"podIP,omitempty"`
	Ports     map[string]int `json:"ports" yaml:"ports,omitempty"`
	NodePort  *int           `json:"nodePort,omitempty" yaml:"nodePort,omitempty"`
}

// Phase folds the backend's free-form status into a pod phase.
func (p *Pod) Phase() corev1.PodPhase {
	return PhaseOf(p.Status)
}

// IsJupyter reports whether the pod runs a notebook image.
func (p *Pod) IsJupyter() bool {
	return strings.Contains(p.Image, "jupyter")
}

// URL is the address of the pod's exposed port on the local node, or "" when
// no node port has been assigned yet.
func (p *Pod) URL() string {
	if p.NodePort == nil {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", *p.NodePort)
}

// PhaseOf maps a status string onto a pod phase.
func PhaseOf(status string) corev1.PodPhase {
	switch strings.ToLower(status) {
	case "running":
		return corev1.PodRunning
	case "pending", "containercreating":
		return corev1.PodPending
	case "failed", "error", "crashloopbackoff":
		return corev1.PodFailed
	case "succeeded", "completed":
		return corev1.PodSucceeded
	default:
		return corev1.PodUnknown
	}
}
