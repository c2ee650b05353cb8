// Package hub maintains the real-time channel to the pod hub.
//
// The wire format is the JSON hub protocol: every record is a JSON object
// terminated by the 0x1E record separator, carried over a WebSocket. After
// an optional negotiate round-trip the client sends the protocol handshake
// and then exchanges invocations (type 1), completions (type 3), pings
// (type 6) and close messages (type 7).
//
// Channel wraps a Dialer with the reconnect policy: retry forever along a
// fixed BackoffSchedule, run OnConnected hooks on every transition into
// Connected, and publish state changes to subscribers. It is the single
// authoritative writer of ChannelState.
//
// Example:
//
//	dialer := &hub.WebSocketDialer{URL: "http://localhost:5260/hubs/pod"}
//	ch := hub.NewChannel(dialer, router.HandleMessage, hub.Options{Name: "pod-hub"})
//	ch.OnConnected(registry.ReplayAll)
//	ch.Start(ctx)
//	defer ch.Close()
package hub
