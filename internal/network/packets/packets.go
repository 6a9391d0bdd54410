// Package packets defines the prediction server wire format.
//
// Every packet is a 6-byte little-endian header followed by a body:
//
//	[0:2] packet ID
//	[2:6] body length
//
// Image bodies are PNG encoded.
package packets

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
)

// Packet IDs
const (
	// Client -> Server
	CP_PREDICT_REQ uint16 = 0x0001 // Slice image to transform

	// Server -> Client
	PC_PREDICT_ACK   uint16 = 0x0002 // Transformed image
	PC_PREDICT_ERROR uint16 = 0x0003 // Transform failed, body is a message
)

// HeaderSize is the fixed header length.
const HeaderSize = 6

// MaxBodySize bounds a single packet body.
const MaxBodySize = 16 << 20

// Packet errors.
var (
	ErrBodyTooLarge    = errors.New("packet body too large")
	ErrUnknownPacketID = errors.New("unknown packet ID")
)

// Header precedes every packet body.
type Header struct {
	PacketID uint16
	Length   uint32
}

// Encode encodes the header.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(buf[0:], h.PacketID)
	binary.LittleEndian.PutUint32(buf[2:], h.Length)
	return buf
}

// DecodeHeader decodes a header from the first HeaderSize bytes of buf.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("short header: %d bytes", len(buf))
	}
	h := Header{
		PacketID: binary.LittleEndian.Uint16(buf[0:]),
		Length:   binary.LittleEndian.Uint32(buf[2:]),
	}
	if h.Length > MaxBodySize {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrBodyTooLarge, h.Length)
	}
	return h, nil
}

// Packet is a decoded packet.
type Packet struct {
	PacketID uint16
	Body     []byte
}

// Encode encodes the packet with its header.
func (p *Packet) Encode() []byte {
	buf := make([]byte, 0, HeaderSize+len(p.Body))
	buf = append(buf, Header{PacketID: p.PacketID, Length: uint32(len(p.Body))}.Encode()...)
	return append(buf, p.Body...)
}

// Write writes the packet to w.
func Write(w io.Writer, p *Packet) error {
	if len(p.Body) > MaxBodySize {
		return fmt.Errorf("%w: %d bytes", ErrBodyTooLarge, len(p.Body))
	}
	_, err := w.Write(p.Encode())
	return err
}

// Read reads one packet from r.
func Read(r io.Reader) (*Packet, error) {
	head := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, err
	}
	h, err := DecodeHeader(head)
	if err != nil {
		return nil, err
	}
	body := make([]byte, h.Length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("reading %d byte body: %w", h.Length, err)
	}
	return &Packet{PacketID: h.PacketID, Body: body}, nil
}

// NewImagePacket encodes img as a PNG body.
func NewImagePacket(id uint16, img image.Image) (*Packet, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return &Packet{PacketID: id, Body: buf.Bytes()}, nil
}

// Image decodes the packet body as a PNG.
func (p *Packet) Image() (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(p.Body))
	if err != nil {
		return nil, fmt.Errorf("decoding PNG: %w", err)
	}
	return img, nil
}
