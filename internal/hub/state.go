package hub

// ChannelState is the connection state of a Channel.
type ChannelState int

const (
	Disconnected ChannelState = iota
	Connecting
	Connected
	Reconnecting
)

// String makes ChannelState satisfy the fmt.Stringer interface.
func (s ChannelState) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case Reconnecting:
		return "Reconnecting"
	default:
		return "Unknown"
	}
}
