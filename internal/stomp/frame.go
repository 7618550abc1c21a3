// Package stomp implements the subset of STOMP 1.2 the storefront
// broker speaks: connect handshake, topic subscriptions, message
// delivery and bidirectional heartbeats.
package stomp

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Command is a STOMP frame command.
type Command string

const (
	CmdConnect     Command = "CONNECT"
	CmdConnected   Command = "CONNECTED"
	CmdSubscribe   Command = "SUBSCRIBE"
	CmdUnsubscribe Command = "UNSUBSCRIBE"
	CmdMessage     Command = "MESSAGE"
	CmdError       Command = "ERROR"
	CmdDisconnect  Command = "DISCONNECT"
	CmdReceipt     Command = "RECEIPT"
)

// Frame is one protocol-level message unit. A nil frame stands for a
// bare heartbeat.
type Frame struct {
	Command Command
	Headers map[string]string
	Body    []byte
}

// heartbeatFrame is the wire form of a keep-alive: a single EOL.
var heartbeatFrame = []byte("\n")

// Heartbeat returns the wire encoding of a keep-alive frame.
func Heartbeat() []byte {
	return heartbeatFrame
}

// NewFrame builds a frame from a command and alternating header
// key/value pairs.
func NewFrame(cmd Command, headers ...string) *Frame {
	f := &Frame{Command: cmd, Headers: make(map[string]string, len(headers)/2)}
	for i := 0; i+1 < len(headers); i += 2 {
		f.Headers[headers[i]] = headers[i+1]
	}
	return f
}

// Marshal encodes the frame in STOMP wire format. Headers are emitted
// in sorted order so the encoding is deterministic.
func (f *Frame) Marshal() []byte {
	var buf bytes.Buffer
	buf.WriteString(string(f.Command))
	buf.WriteByte('\n')

	keys := make([]string, 0, len(f.Headers))
	for k := range f.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf.WriteString(k)
		buf.WriteByte(':')
		buf.WriteString(f.Headers[k])
		buf.WriteByte('\n')
	}

	buf.WriteByte('\n')
	buf.Write(f.Body)
	buf.WriteByte(0)
	return buf.Bytes()
}

// Parse decodes one wire frame. A bare EOL decodes to (nil, nil): a
// heartbeat carries no frame.
func Parse(data []byte) (*Frame, error) {
	trimmed := bytes.TrimLeft(data, "\r\n")
	if len(trimmed) == 0 {
		return nil, nil
	}

	data = bytes.TrimSuffix(trimmed, []byte{0})

	headerEnd := bytes.Index(data, []byte("\n\n"))
	body := []byte(nil)
	head := data
	if headerEnd >= 0 {
		head = data[:headerEnd]
		body = data[headerEnd+2:]
	}

	lines := strings.Split(strings.ReplaceAll(string(head), "\r\n", "\n"), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return nil, fmt.Errorf("frame missing command")
	}

	f := &Frame{
		Command: Command(lines[0]),
		Headers: make(map[string]string, len(lines)-1),
	}
	switch f.Command {
	case CmdConnect, CmdConnected, CmdSubscribe, CmdUnsubscribe,
		CmdMessage, CmdError, CmdDisconnect, CmdReceipt:
	default:
		return nil, fmt.Errorf("unknown command %q", lines[0])
	}

	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			return nil, fmt.Errorf("malformed header %q", line)
		}
		key := line[:idx]
		// first header wins on repeats
		if _, exists := f.Headers[key]; !exists {
			f.Headers[key] = line[idx+1:]
		}
	}

	f.Body = body
	return f, nil
}

// ParseHeartBeat decodes a "heart-beat" header value into the
// advertised send and receive intervals in milliseconds.
func ParseHeartBeat(value string) (sendMs, recvMs int) {
	parts := strings.SplitN(value, ",", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	sendMs, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
	recvMs, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	return sendMs, recvMs
}
