package app

import (
	"context"
	"errors"
	"fmt"

	"podctl/internal/podapi"
	"podctl/internal/podview"
	"podctl/internal/subscription"
	"podctl/pkg/logging"

	"k8s.io/apimachinery/pkg/util/sets"
)

// LoadPods fetches the pod list, replaces the view's contents with it and
// watches the status of every pod. Status watches for pods the backend no
// longer lists are dropped.
func (s *Services) LoadPods(ctx context.Context) ([]podview.Pod, error) {
	pods, err := s.API.ListPods(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}
	listed := sets.New[string]()
	for _, p := range pods {
		if p != nil {
			listed.Insert(p.Name)
		}
	}
	for _, sub := range s.Registry.Snapshot() {
		if sub.Kind != subscription.StatusWatch || listed.Has(sub.Pod) {
			continue
		}
		if err := s.Registry.Unsubscribe(ctx, sub.Pod, subscription.StatusWatch); err != nil {
			logging.Warn("Pods", "failed to drop status watch for %s: %v", sub.Pod, err)
		}
		logging.Debug("Pods", "%s is gone, status watch dropped", sub.Pod)
	}

	s.View.Track(pods)
	for _, name := range sets.List(listed) {
		if err := s.Registry.Subscribe(ctx, name, subscription.StatusWatch); err != nil {
			logging.Warn("Pods", "status watch for %s rejected: %v", name, err)
		}
	}
	return s.View.Pods(), nil
}

// CreatePod creates a pod, tracks it and watches its status.
func (s *Services) CreatePod(ctx context.Context, req podapi.CreatePodRequest) (*podview.Pod, error) {
	pod, err := s.API.CreatePod(ctx, req)
	if err != nil {
		return nil, err
	}
	s.View.Add(pod)
	if err := s.Registry.Subscribe(ctx, pod.Name, subscription.StatusWatch); err != nil {
		logging.Warn("Pods", "status watch for %s rejected: %v", pod.Name, err)
	}
	logging.Debug("Pods", "tracking new pod %s", pod.Name)
	return pod, nil
}

// DeletePod deletes a pod and drops every subscription and log view for it.
func (s *Services) DeletePod(ctx context.Context, name string) error {
	if err := s.API.DeletePod(ctx, name); err != nil {
		return err
	}
	var errs []error
	for _, kind := range []subscription.Kind{subscription.StatusWatch, subscription.LogStream} {
		if err := s.Registry.Unsubscribe(ctx, name, kind); err != nil {
			errs = append(errs, err)
		}
	}
	s.View.Remove(name)
	if err := s.Terminals.Close(name); err != nil {
		errs = append(errs, err)
	}
	logging.Debug("Pods", "dropped %s", name)
	return errors.Join(errs...)
}

// OpenLogs opens a log view for pod seeded with its history and starts the
// live log stream. A failed history fetch is shown as the first line instead
// of failing the call.
func (s *Services) OpenLogs(ctx context.Context, pod string) (*podview.LogView, error) {
	history, err := s.API.GetPodLogs(ctx, pod)
	if err != nil {
		logging.Warn("Pods", "history for %s unavailable: %v", pod, err)
		history = []string{fmt.Sprintf("Failed to load logs: %v", err)}
	}
	lv := s.View.OpenLogView(pod, history)
	if err := s.Registry.Subscribe(ctx, pod, subscription.LogStream); err != nil {
		return lv, fmt.Errorf("failed to start log stream: %w", err)
	}
	return lv, nil
}

// CloseLogs stops the live log stream and closes lv.
func (s *Services) CloseLogs(ctx context.Context, lv *podview.LogView) error {
	err := s.Registry.Unsubscribe(ctx, lv.Pod(), subscription.LogStream)
	lv.Close()
	return err
}
