package types

// ------------------------
// Status transport
// ------------------------

type TransportKind string

const (
	TransportUSB    TransportKind = "usb"    // USB CDC serial
	TransportUART   TransportKind = "uart"   // hardware UART
	TransportStdout TransportKind = "stdout" // host only
	TransportNone   TransportKind = "none"
)

type TransportConfig struct {
	Kind TransportKind `json:"kind" yaml:"kind"`
	Bus  string        `json:"bus,omitempty" yaml:"bus"` // "uart0" | "uart1"
	Baud uint32        `json:"baud,omitempty" yaml:"baud"`
	TX   int           `json:"tx,omitempty" yaml:"tx"`
	RX   int           `json:"rx,omitempty" yaml:"rx"`
}

// SessionState is reported by a transport's housekeeping poll.
type SessionState uint8

const (
	SessionClosed SessionState = iota
	SessionOpen
)

func (s SessionState) String() string {
	if s == SessionOpen {
		return "open"
	}
	return "closed"
}
