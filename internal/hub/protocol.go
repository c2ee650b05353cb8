package hub

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// recordSeparator terminates every JSON record of the hub protocol.
const recordSeparator = 0x1e

// MessageType is the "type" discriminator of a hub protocol message.
type MessageType int

const (
	TypeInvocation       MessageType = 1
	TypeStreamItem       MessageType = 2
	TypeCompletion       MessageType = 3
	TypeStreamInvocation MessageType = 4
	TypeCancelInvocation MessageType = 5
	TypePing             MessageType = 6
	TypeClose            MessageType = 7
)

// Message is one decoded record received from the hub.
type Message struct {
	Type           MessageType       `json:"type"`
	InvocationID   string            `json:"invocationId,omitempty"`
	Target         string            `json:"target,omitempty"`
	Arguments      []json.RawMessage `json:"arguments,omitempty"`
	Result         json.RawMessage   `json:"result,omitempty"`
	Error          string            `json:"error,omitempty"`
	AllowReconnect bool              `json:"allowReconnect,omitempty"`
}

// Arg decodes argument i into v.
func (m Message) Arg(i int, v any) error {
	if i < 0 || i >= len(m.Arguments) {
		return fmt.Errorf("%s: missing argument %d (got %d)", m.Target, i, len(m.Arguments))
	}
	if err := json.Unmarshal(m.Arguments[i], v); err != nil {
		return fmt.Errorf("%s: argument %d: %w", m.Target, i, err)
	}
	return nil
}

// NewInvocation builds an inbound-style invocation message. Used by fakes
// and tests that feed frames without a socket.
func NewInvocation(target string, args ...any) (Message, error) {
	msg := Message{Type: TypeInvocation, Target: target}
	for _, a := range args {
		raw, err := json.Marshal(a)
		if err != nil {
			return Message{}, fmt.Errorf("encode %s argument: %w", target, err)
		}
		msg.Arguments = append(msg.Arguments, raw)
	}
	return msg, nil
}

type invocationRecord struct {
	Type         MessageType `json:"type"`
	InvocationID string      `json:"invocationId,omitempty"`
	Target       string      `json:"target"`
	Arguments    []any       `json:"arguments"`
}

type handshakeRequest struct {
	Protocol string `json:"protocol"`
	Version  int    `json:"version"`
}

type handshakeResponse struct {
	Error string `json:"error,omitempty"`
}

// encodeRecord marshals v and appends the record separator.
func encodeRecord(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(data, recordSeparator), nil
}

// splitRecords splits a transport message into its records. A message may
// carry several records; the trailing separator yields no empty record.
func splitRecords(data []byte) [][]byte {
	parts := bytes.Split(data, []byte{recordSeparator})
	records := parts[:0]
	for _, p := range parts {
		if len(bytes.TrimSpace(p)) > 0 {
			records = append(records, p)
		}
	}
	return records
}

func decodeMessage(record []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(record, &msg); err != nil {
		return Message{}, fmt.Errorf("malformed hub record: %w", err)
	}
	return msg, nil
}
