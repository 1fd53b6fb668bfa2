package controller

import (
	"fmt"
	"net"

	"github.com/aretw0/trustroute/pkg/domain"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// ExperimentalEtherType is the IEEE local experimental EtherType used for synthetic frames.
const ExperimentalEtherType layers.EthernetType = 0x88b5

// ParseEthernet extracts the source and destination identities of a frame.
// Returns domain.ErrNotEthernet when no Ethernet header can be decoded.
func ParseEthernet(data []byte) (src, dst domain.NodeID, err error) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.NoCopy)
	eth, ok := packet.Layer(layers.LayerTypeEthernet).(*layers.Ethernet)
	if !ok {
		return "", "", domain.ErrNotEthernet
	}
	return domain.NodeIDFromHardwareAddr(eth.SrcMAC), domain.NodeIDFromHardwareAddr(eth.DstMAC), nil
}

// BuildEthernetFrame serialises an Ethernet frame, padded to the minimum frame size.
func BuildEthernetFrame(src, dst net.HardwareAddr, etherType layers.EthernetType, payload []byte) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	eth := &layers.Ethernet{
		SrcMAC:       src,
		DstMAC:       dst,
		EthernetType: etherType,
	}
	opts := gopacket.SerializeOptions{FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, gopacket.Payload(payload)); err != nil {
		return nil, fmt.Errorf("failed to serialise frame: %w", err)
	}
	return buf.Bytes(), nil
}
