package wire

import (
	"fmt"
	"io"
)

// CodecID identifies the video codec carried by a video socket, taken from
// the 4-byte tag in the first video-stream header.
type CodecID uint32

const (
	CodecH264 CodecID = 0x68323634
	CodecH265 CodecID = 0x68323635
	CodecAV1  CodecID = 0x00617631
)

func (c CodecID) String() string {
	switch c {
	case CodecH264:
		return "h264"
	case CodecH265:
		return "h265"
	case CodecAV1:
		return "av1"
	default:
		return fmt.Sprintf("unknown(%#x)", uint32(c))
	}
}

// configBit is the top bit of pts_flags (bit 63); keyframeBit is bit 62. The
// remaining 62 bits hold the presentation timestamp.
const (
	configBit   = uint64(1) << 63
	keyframeBit = uint64(1) << 62
	ptsMask     = keyframeBit - 1
)

// VideoHeader is the 12-byte header sent once at the start of a video
// socket: a 4-byte codec id followed by the device's initial width and
// height as 4-byte big-endian integers each. Teacher's streaming.go reads
// this same layout before entering the packet loop.
type VideoHeader struct {
	Codec  CodecID
	Width  uint32
	Height uint32
}

// ReadVideoHeader reads the fixed 12-byte video-stream header.
func ReadVideoHeader(r io.Reader) (VideoHeader, error) {
	codec, err := readU32(r)
	if err != nil {
		return VideoHeader{}, fmt.Errorf("wire: read codec id: %w", err)
	}
	w, err := readU32(r)
	if err != nil {
		return VideoHeader{}, fmt.Errorf("wire: read initial width: %w", err)
	}
	h, err := readU32(r)
	if err != nil {
		return VideoHeader{}, fmt.Errorf("wire: read initial height: %w", err)
	}
	return VideoHeader{Codec: CodecID(codec), Width: w, Height: h}, nil
}

// Packet is one framed video packet: a config packet (SPS/PPS for H264/H265)
// carries no timestamp and must be merged into the next data packet by the
// caller; a keyframe carries a full frame indepenent of prior packets.
type Packet struct {
	PTS      *int64 // nil iff the config bit is set
	Keyframe bool
	Data     []byte
}

// ReadVideoPacket reads one packet frame: u64 pts_flags || u32 size || size
// bytes. The config bit (top bit of pts_flags) means the packet carries no
// timestamp and Packet.PTS is nil; otherwise PTS holds the low 62 bits of
// pts_flags. The keyframe bit is bit 62, independent of the config bit.
func ReadVideoPacket(r io.Reader) (Packet, error) {
	ptsFlags, err := readU64(r)
	if err != nil {
		return Packet{}, err
	}
	size, err := readU32(r)
	if err != nil {
		return Packet{}, fmt.Errorf("wire: read packet size: %w", err)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return Packet{}, fmt.Errorf("wire: read packet payload: %w", err)
	}

	pkt := Packet{
		Keyframe: ptsFlags&keyframeBit != 0,
		Data:     data,
	}
	if ptsFlags&configBit == 0 {
		pts := int64(ptsFlags & ptsMask)
		pkt.PTS = &pts
	}
	return pkt, nil
}

// IsConfigCodec reports whether codec requires config-packet merge-forward
// (H264/H265 SPS/PPS units must be prepended to the following data packet;
// AV1 carries no equivalent out-of-band config packet).
func IsConfigCodec(codec CodecID) bool {
	return codec == CodecH264 || codec == CodecH265
}
