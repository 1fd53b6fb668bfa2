package controller

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/trustroute/pkg/domain"
)

const (
	// NoBuffer marks a packet-in whose frame was not buffered by the switch (OFP_NO_BUFFER).
	NoBuffer uint32 = 0xffffffff

	// MaxLenNoBuffer asks the switch to send whole frames to the controller (OFPCML_NO_BUFFER).
	MaxLenNoBuffer uint16 = 0xffff

	// TableMissPriority is the priority of the catch-all entry installed on connect.
	TableMissPriority uint16 = 0
)

// DatapathID identifies a switch.
type DatapathID uint64

// String renders the id as 16 hex digits.
func (d DatapathID) String() string {
	return fmt.Sprintf("%016x", uint64(d))
}

// Port is an output port on the wire. Unlike domain.Action it admits every reserved
// OpenFlow port, since switch instructions may target the controller or the table.
type Port uint32

// Reserved OpenFlow ports (OFPP_*).
const (
	PortInPort     Port = 0xfffffff8
	PortTable      Port = 0xfffffff9
	PortNormal     Port = 0xfffffffa
	PortFlood           = Port(domain.Flood)
	PortAll        Port = 0xfffffffc
	PortController      = Port(domain.ControllerPort)
	PortLocal      Port = 0xfffffffe
	PortAny        Port = 0xffffffff
)

var portNames = map[Port]string{
	PortInPort:     "IN_PORT",
	PortTable:      "TABLE",
	PortNormal:     "NORMAL",
	PortFlood:      "FLOOD",
	PortAll:        "ALL",
	PortController: "CONTROLLER",
	PortLocal:      "LOCAL",
	PortAny:        "ANY",
}

// PortOf converts an engine action into an output port.
func PortOf(a domain.Action) Port { return Port(a) }

func (p Port) String() string {
	if name, ok := portNames[p]; ok {
		return name
	}
	return strconv.FormatUint(uint64(p), 10)
}

// MarshalText renders reserved ports by name and others as decimal.
func (p Port) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts a reserved port name (any case) or any 32-bit number.
func (p *Port) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	for port, name := range portNames {
		if strings.EqualFold(s, name) {
			*p = port
			return nil
		}
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: port %q: %v", domain.ErrInvalidArgument, s, err)
	}
	*p = Port(n)
	return nil
}

// MarshalJSON always emits a string.
func (p Port) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}

// UnmarshalJSON accepts a number or a string.
func (p *Port) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	return p.UnmarshalText([]byte(s))
}

// OutputAction forwards a frame to a port.
type OutputAction struct {
	Port   Port   `json:"port"`
	MaxLen uint16 `json:"max_len,omitempty"`
}

// PacketIn is a frame the switch could not match.
type PacketIn struct {
	DatapathID DatapathID `json:"datapath_id"`
	BufferID   uint32     `json:"buffer_id"`
	InPort     uint32     `json:"in_port"`
	Data       []byte     `json:"data"`
	// Candidates are the egress ports the transport considers usable.
	Candidates []domain.Action `json:"candidates,omitempty"`
}

// PacketOut tells the switch what to do with a packet-in.
type PacketOut struct {
	DatapathID DatapathID     `json:"datapath_id"`
	BufferID   uint32         `json:"buffer_id"`
	InPort     uint32         `json:"in_port"`
	Actions    []OutputAction `json:"actions"`
	// Data is set only when the switch did not buffer the frame.
	Data     []byte          `json:"data,omitempty"`
	Decision domain.Decision `json:"decision"`
}

// Match selects frames. The zero value matches everything.
type Match struct {
	InPort *uint32 `json:"in_port,omitempty"`
	EthSrc string  `json:"eth_src,omitempty"`
	EthDst string  `json:"eth_dst,omitempty"`
}

// FlowMod installs a flow entry whose instruction applies Actions.
type FlowMod struct {
	DatapathID DatapathID     `json:"datapath_id"`
	Priority   uint16         `json:"priority"`
	Match      Match          `json:"match"`
	Actions    []OutputAction `json:"actions"`
}
