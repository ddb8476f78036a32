package video

import (
	"fmt"
	"image"

	"github.com/giorgisio/goav/avcodec"
	"github.com/giorgisio/goav/avutil"
	"golang.org/x/image/draw"

	"github.com/akichase/scrcpy-mask/internal/wire"
)

// ffmpegCodecID maps a wire.CodecID to the ffmpeg decoder id goav expects.
func ffmpegCodecID(c wire.CodecID) (avcodec.CodecId, error) {
	switch c {
	case wire.CodecH264:
		return avcodec.AV_CODEC_ID_H264, nil
	case wire.CodecH265:
		return avcodec.AV_CODEC_ID_HEVC, nil
	case wire.CodecAV1:
		return avcodec.AV_CODEC_ID_AV1, nil
	default:
		return 0, fmt.Errorf("video: unsupported codec %s", c)
	}
}

// Decoder wraps an ffmpeg decode context (via goav) and implements
// controller.FrameDecoder: consume one wire.Packet, emit an RGBA frame.
// Config-packet merging into the following data packet is the caller's
// responsibility (internal/controller's video socket loop does it); this
// type only ever sees already-merged payloads.
type Decoder struct {
	codecCtx *avcodec.Context
	frame    *avutil.Frame
	rgba     *image.RGBA // reused across Decode calls to avoid reallocating
}

// NewDecoder opens an ffmpeg decode context for codec.
func NewDecoder(codec wire.CodecID) (*Decoder, error) {
	id, err := ffmpegCodecID(codec)
	if err != nil {
		return nil, err
	}
	c := avcodec.AvcodecFindDecoder(id)
	if c == nil {
		return nil, fmt.Errorf("video: decoder not found for %s", codec)
	}
	ctx := c.AvcodecAllocContext3()
	if ctx.AvcodecOpen2(c, nil) < 0 {
		return nil, fmt.Errorf("video: could not open codec %s", codec)
	}
	return &Decoder{codecCtx: ctx, frame: avutil.AvFrameAlloc()}, nil
}

// Decode implements controller.FrameDecoder.
func (d *Decoder) Decode(pkt wire.Packet) (data []byte, width, height uint32, ok bool, err error) {
	avPkt := avcodec.AvPacketAlloc()
	defer avPkt.AvPacketUnref()
	avPkt.AvInitPacket()
	avPkt.SetData(pkt.Data)
	avPkt.SetSize(len(pkt.Data))

	if ret := avcodec.AvcodecSendPacket(d.codecCtx, avPkt); ret < 0 {
		return nil, 0, 0, false, fmt.Errorf("video: send packet: ffmpeg error %d", ret)
	}
	if ret := avcodec.AvcodecReceiveFrame(d.codecCtx, d.frame); ret != 0 {
		return nil, 0, 0, false, nil // no frame ready yet, not an error
	}

	w, h := d.frame.Width(), d.frame.Height()
	yuv := frameToYCbCr(d.frame, w, h)
	d.rgba = ensureRGBA(d.rgba, w, h)
	draw.Draw(d.rgba, d.rgba.Bounds(), yuv, image.Point{}, draw.Src)

	return d.rgba.Pix, uint32(w), uint32(h), true, nil
}

// Close releases the ffmpeg resources held by the decoder.
func (d *Decoder) Close() {
	avutil.AvFrameFree(d.frame)
}

func ensureRGBA(existing *image.RGBA, w, h int) *image.RGBA {
	if existing != nil {
		b := existing.Bounds()
		if b.Dx() == w && b.Dy() == h {
			return existing
		}
	}
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// frameToYCbCr builds a stdlib image.YCbCr view over an ffmpeg AVFrame's
// planar YUV420P planes without copying, so the draw.Draw conversion below
// is the only full pixel pass per frame. goav exposes each plane already
// sliced to its backing buffer via Data(), and the row stride via
// Linesize().
func frameToYCbCr(frame *avutil.Frame, w, h int) *image.YCbCr {
	planes := frame.Data()
	strides := frame.Linesize()

	return &image.YCbCr{
		Y:              planes[0][:strides[0]*h],
		Cb:             planes[1][:strides[1]*(h/2)],
		Cr:             planes[2][:strides[2]*(h/2)],
		YStride:        strides[0],
		CStride:        strides[1],
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, w, h),
	}
}
