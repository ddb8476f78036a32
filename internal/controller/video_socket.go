package controller

import (
	"context"
	"fmt"
	"io"

	"github.com/akichase/scrcpy-mask/internal/wire"
	"github.com/rs/zerolog/log"
)

// FrameDecoder converts framed H264/H265/AV1 packets into RGBA frames. The
// video-decoder adapter (internal/video) implements this; the controller
// package only depends on the interface so it stays testable without a
// real codec.
type FrameDecoder interface {
	// Decode consumes one packet (with any pending config NALU already
	// merged by the caller) and returns an RGBA frame, or ok=false if the
	// packet produced no displayable frame (e.g. it was itself a config
	// packet with nothing queued yet).
	Decode(pkt wire.Packet) (data []byte, width, height uint32, ok bool, err error)
}

// VideoEvent is published to the video sink for a device: either a decoded
// frame or the terminal Close signal.
//
// Data carries the decoded RGBA frame for the RGBA-consuming collaborator
// path (spec §1's local mask window, and any future screenshot endpoint).
// RawData carries the same packet's encoded bitstream (with any pending
// config NALU already merged) for the WebRTC leg, which RTP-packetizes the
// bitstream directly and never decodes it itself — browsers do that
// client-side, the same split the teacher's real offer handler makes.
type VideoEvent struct {
	Data     []byte
	Width    uint32
	Height   uint32
	RawData  []byte
	Keyframe bool
	Close    bool
}

// runVideoSocket reads the 12-byte video header, then loops
// read_video_packet → merge config → decode → publish. It always publishes
// a terminal Close event, whether it exits via cancellation or a read
// error.
func runVideoSocket(ctx context.Context, r io.Reader, scid string, decoder FrameDecoder, sink func(VideoEvent), metrics *deviceMetrics) error {
	defer sink(VideoEvent{Close: true})

	hdr, err := wire.ReadVideoHeader(r)
	if err != nil {
		return fmt.Errorf("controller: video header scid=%s: %w", scid, err)
	}
	log.Info().Str("component", "controller").Str("scid", scid).Str("codec", hdr.Codec.String()).Msg("video socket opened")

	var pendingConfig []byte
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		pkt, err := wire.ReadVideoPacket(r)
		if err != nil {
			return fmt.Errorf("controller: video packet scid=%s: %w", scid, err)
		}
		metrics.framesRead.Add(1)

		if pkt.PTS == nil {
			// Config packet: hold it for merge-forward into the next data
			// packet (H264/H265 SPS/PPS semantics).
			if wire.IsConfigCodec(hdr.Codec) {
				pendingConfig = append(append([]byte(nil), pendingConfig...), pkt.Data...)
			}
			continue
		}
		if pendingConfig != nil {
			pkt.Data = append(pendingConfig, pkt.Data...)
			pendingConfig = nil
		}

		data, w, h, ok, err := decoder.Decode(pkt)
		if err != nil {
			return fmt.Errorf("controller: decode scid=%s: %w", scid, err)
		}
		if !ok {
			continue
		}
		sink(VideoEvent{Data: data, Width: w, Height: h, RawData: pkt.Data, Keyframe: pkt.Keyframe})
	}
}
