package app

import (
	"context"
	"errors"
	"fmt"

	"podctl/internal/config"
	"podctl/internal/hub"
	"podctl/internal/podapi"
	"podctl/internal/podview"
	"podctl/internal/router"
	"podctl/internal/subscription"
	"podctl/internal/terminal"
	"podctl/pkg/logging"
)

// Services holds the wired real-time core and the REST collaborator.
type Services struct {
	API       *podapi.Client
	Hub       *hub.Channel
	Router    *router.Router
	Registry  *subscription.Registry
	View      *podview.View
	Terminals *terminal.Manager
}

// InitializeServices builds the pod hub channel, its router, registry and
// view, and the terminal session manager.
func InitializeServices(cfg *Config) (*Services, error) {
	if cfg.PodctlConfig == nil {
		return nil, errors.New("configuration not loaded")
	}
	pc := cfg.PodctlConfig

	api, err := podapi.New(podapi.Config{
		BaseURL:  pc.API.BaseURL,
		Timeout:  pc.API.Timeout,
		RetryMax: pc.API.RetryMax,
	})
	if err != nil {
		return nil, err
	}

	r := router.New()
	ch := hub.NewChannel(newDialer(pc.Hub.URL, pc.Hub), r.HandleMessage, hub.Options{Name: "pod-hub"})
	registry := subscription.NewRegistry(ch)
	ch.OnConnected(registry.ReplayAll)

	view := podview.New(pc.Logs.MaxLines)
	view.Attach(r)

	terminalHub := pc.Hub
	terminals := terminal.NewManager(func(pod string, deliver func(hub.Message)) terminal.Channel {
		return hub.NewChannel(newDialer(pc.Terminal.URL, terminalHub), deliver, hub.Options{Name: "terminal/" + pod})
	}, pc.Terminal.Prompt)

	return &Services{
		API:       api,
		Hub:       ch,
		Router:    r,
		Registry:  registry,
		View:      view,
		Terminals: terminals,
	}, nil
}

func newDialer(url string, hc config.HubConfig) *hub.WebSocketDialer {
	return &hub.WebSocketDialer{
		URL:              url,
		SkipNegotiation:  hc.SkipNegotiation,
		PingInterval:     hc.PingInterval,
		ServerTimeout:    hc.ServerTimeout,
		HandshakeTimeout: hc.HandshakeTimeout,
	}
}

// Start connects the pod hub. Reconnects happen in the background.
func (s *Services) Start(ctx context.Context) {
	s.Hub.Start(ctx)
}

// Stop closes terminal sessions, detaches the view and closes the hub.
func (s *Services) Stop() error {
	var errs []error
	if err := s.Terminals.CloseAll(); err != nil {
		errs = append(errs, fmt.Errorf("close terminals: %w", err))
	}
	s.View.Detach()
	if err := s.Hub.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close hub: %w", err))
	}
	logging.Debug("Services", "stopped")
	return errors.Join(errs...)
}
