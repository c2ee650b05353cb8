package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"podctl/internal/cli"
	"podctl/internal/podview"
	"podctl/internal/router"
	"podctl/internal/subscription"
	"podctl/internal/terminal"
	"podctl/internal/tui/controller"
	"podctl/internal/tui/design"
	"podctl/internal/tui/model"
	"podctl/pkg/logging"
)

// Exec input bytes that end an interactive session.
const (
	keyCtrlD        = 0x04
	keyCtrlBracket  = 0x1d
	statusBufferLen = 64
)

func withSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// Watch prints status changes for the named pods (every pod when names is
// empty) until ctx is done or the process is interrupted.
func (a *Application) Watch(ctx context.Context, out io.Writer, names []string) error {
	ctx, cancel := withSignals(ctx)
	defer cancel()

	s := a.services
	statusCh, listener := s.Router.ListenChannel(router.StreamStatus, statusBufferLen)
	defer listener.Close()

	s.Start(ctx)
	defer s.Stop()

	if err := a.track(ctx, names); err != nil {
		return err
	}
	printPods(out, s.View.Pods())

	online := s.Hub.SubscribeConnectivity()
	defer online.Close()

	logging.Info("CLI", "Watching pod status. Press Ctrl+C to stop.")
	for {
		select {
		case <-ctx.Done():
			return nil
		case up, ok := <-online.C:
			if !ok {
				return nil
			}
			if up {
				fmt.Fprintln(out, "# connected")
			} else {
				fmt.Fprintln(out, "# disconnected, reconnecting")
			}
		case f, ok := <-statusCh:
			if !ok {
				return nil
			}
			sc, isStatus := f.(router.StatusChanged)
			if !isStatus {
				continue
			}
			if _, tracked := s.View.Get(sc.Update.Pod); !tracked {
				continue
			}
			fmt.Fprintf(out, "%s  %-24s %s\n", time.Now().Format("15:04:05"), sc.Update.Pod, sc.Update.Status)
		}
	}
}

// track loads either every pod or only the named ones into the view and
// watches their status.
func (a *Application) track(ctx context.Context, names []string) error {
	s := a.services
	if len(names) == 0 {
		_, err := s.LoadPods(ctx)
		return err
	}
	pods := make([]*podview.Pod, 0, len(names))
	for _, name := range names {
		p, err := s.API.GetPod(ctx, name)
		if err != nil {
			return err
		}
		pods = append(pods, p)
	}
	s.View.Track(pods)
	for _, p := range pods {
		if err := s.Registry.Subscribe(ctx, p.Name, subscription.StatusWatch); err != nil {
			logging.Warn("CLI", "status watch for %s rejected: %v", p.Name, err)
		}
	}
	return nil
}

func printPods(out io.Writer, pods []podview.Pod) {
	tbl := cli.NewTable(out, "NAME", "STATUS", "IMAGE", "URL")
	for _, p := range pods {
		tbl.Append(p.Name, tbl.Status(p.Status), p.Image, p.URL())
	}
	tbl.Render("No pods to watch")
}

// Logs prints the pod's log history and, with follow, keeps printing
// streamed lines until interrupted.
func (a *Application) Logs(ctx context.Context, out io.Writer, pod string, follow bool) error {
	s := a.services
	if !follow {
		lines, err := s.API.GetPodLogs(ctx, pod)
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Fprintln(out, line)
		}
		return nil
	}

	ctx, cancel := withSignals(ctx)
	defer cancel()

	s.Start(ctx)
	defer s.Stop()

	lv, err := s.OpenLogs(ctx, pod)
	if err != nil && lv == nil {
		return err
	}
	lines := make(chan string, statusBufferLen)
	seen := lv.Follow(func(e podview.LogEntry) {
		select {
		case lines <- e.String():
		default:
			logging.Warn("CLI", "output is behind, dropped a log line for %s", pod)
		}
	})
	for _, e := range seen {
		fmt.Fprintln(out, e.String())
	}
	if err != nil {
		// the hub was not reachable yet; the registry replays the stream on connect
		logging.Debug("CLI", "log stream pending: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return s.CloseLogs(context.Background(), lv)
		case line := <-lines:
			fmt.Fprintln(out, line)
		}
	}
}

// Exec attaches an interactive terminal session for pod to in/out. The
// session ends on Ctrl+D, Ctrl+] or when ctx is done.
func (a *Application) Exec(ctx context.Context, pod string, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess, err := a.services.Terminals.Open(ctx, pod, terminal.NewStreamScreen(out))
	if err != nil {
		return err
	}
	defer a.services.Terminals.Close(pod)
	logging.Info("Exec", "session %s opened for %s", sess.ID(), pod)

	input := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := in.Read(buf)
			if n > 0 {
				select {
				case input <- string(buf[:n]):
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		case data := <-input:
			if i := strings.IndexAny(data, string([]byte{keyCtrlD, keyCtrlBracket})); i >= 0 {
				sess.HandleInput(data[:i])
				fmt.Fprint(out, "\r\n")
				return nil
			}
			sess.HandleInput(data)
		}
	}
}

// RunDashboard runs the interactive dashboard until the user quits.
func (a *Application) RunDashboard(ctx context.Context) error {
	logging.Info("CLI", "Starting dashboard...")

	design.Initialize(true)

	logChan := logging.InitForTUI(a.config.LogLevel())
	defer logging.CloseTUIChannel()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := a.services
	online := s.Hub.SubscribeConnectivity()
	defer online.Close()
	s.Start(ctx)
	defer s.Stop()

	p := controller.NewProgram(model.TUIConfig{
		Context:      ctx,
		Backend:      s,
		View:         s.View,
		Connectivity: online,
		LogChannel:   logChan,
		DebugMode:    a.config.Debug,
	})

	if _, err := p.Run(); err != nil {
		logging.Error("TUI-Lifecycle", err, "Error running TUI program")
		return err
	}
	logging.Info("TUI-Lifecycle", "TUI exited.")
	return nil
}
