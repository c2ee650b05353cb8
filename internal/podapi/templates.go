package podapi

import (
	"fmt"
	"sort"
)

// Template is a preset image for new pods.
type Template struct {
	ID          string
	Name        string
	Image       string
	Description string
	DefaultPort int
}

var templates = map[string]Template{
	"ubuntu": {
		ID:          "ubuntu",
		Name:        "Ubuntu 22.04",
		Image:       "ubuntu:22.04",
		Description: "Plain Ubuntu shell for general use",
		DefaultPort: 8888,
	},
	"jupyter-minimal": {
		ID:          "jupyter-minimal",
		Name:        "Jupyter Minimal",
		Image:       "jupyter/minimal-notebook:latest",
		Description: "Python and Jupyter Notebook for basic data analysis",
		DefaultPort: 8888,
	},
	"jupyter-tensorflow": {
		ID:          "jupyter-tensorflow",
		Name:        "Jupyter TensorFlow",
		Image:       "jupyter/tensorflow-notebook:latest",
		Description: "TensorFlow and Keras on Jupyter for deep learning",
		DefaultPort: 8888,
	},
	"jupyter-pytorch": {
		ID:          "jupyter-pytorch",
		Name:        "Jupyter PyTorch",
		Image:       "jupyter/pytorch-notebook:latest",
		Description: "PyTorch on Jupyter for machine learning",
		DefaultPort: 8888,
	},
}

// DefaultTemplate is used when no template or image is given.
const DefaultTemplate = "ubuntu"

// Templates lists the available templates ordered by id.
func Templates() []Template {
	out := make([]Template, 0, len(templates))
	for _, t := range templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LookupTemplate finds a template by id.
func LookupTemplate(id string) (Template, error) {
	t, ok := templates[id]
	if !ok {
		return Template{}, fmt.Errorf("unknown template %q", id)
	}
	return t, nil
}

// Request builds a create request for a pod named name.
func (t Template) Request(name string) CreatePodRequest {
	return CreatePodRequest{Name: name, Image: t.Image, JupyterPort: t.DefaultPort}
}
