package api

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/akichase/scrcpy-mask/internal/wire"
)

// webrtcPeer is one browser's WebRTC leg onto a device's video stream: a
// peer connection, its H264 track and packetizer, and the data channel used
// for the low-latency touch/key injection path — the same shape
// handleOfferGin builds, generalized off a single global device to whichever
// deviceSession the offer names.
type webrtcPeer struct {
	id     string
	scid   string
	pc     *webrtc.PeerConnection
	track  *webrtc.TrackLocalStaticRTP
	pktz   rtp.Packetizer
	pktzMu sync.Mutex
}

func (p *webrtcPeer) pushFrame(rawData []byte, keyframe bool) {
	if len(rawData) == 0 {
		return
	}
	p.pktzMu.Lock()
	packets := p.pktz.Packetize(rawData, 90000/30)
	p.pktzMu.Unlock()
	for _, pkt := range packets {
		if err := p.track.WriteRTP(pkt); err != nil {
			return
		}
	}
}

// handleWebRTCOffer accepts a browser SDP offer for a device's video
// stream, registers an H264 video track fed by that device's decoded
// bitstream, and answers once ICE gathering completes.
func (s *Server) handleWebRTCOffer(c *gin.Context) {
	deviceID := c.Query("device_id")
	if deviceID == "" {
		respondBadRequest(c, "missing device_id")
		return
	}

	ds, ok := s.sessions.get(deviceID)
	if !ok || !ds.Video {
		respondNotFound(c, fmt.Sprintf("device %s has no active video stream", deviceID))
		return
	}

	var offer webrtc.SessionDescription
	if err := c.ShouldBindJSON(&offer); err != nil {
		respondBadRequest(c, "invalid offer")
		return
	}

	m := webrtc.MediaEngine{}
	if err := m.RegisterCodec(webrtc.RTPCodecParameters{
		RTPCodecCapability: webrtc.RTPCodecCapability{
			MimeType:     webrtc.MimeTypeH264,
			ClockRate:    90000,
			SDPFmtpLine:  "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=42e01f",
			RTCPFeedback: []webrtc.RTCPFeedback{{Type: "nack"}, {Type: "nack", Parameter: "pli"}, {Type: "ccm", Parameter: "fir"}},
		},
		PayloadType: 96,
	}, webrtc.RTPCodecTypeVideo); err != nil {
		respondInternalError(c, "register codec error")
		return
	}

	papi := webrtc.NewAPI(webrtc.WithMediaEngine(&m))
	pc, err := papi.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		respondInternalError(c, "peer connection error")
		return
	}

	track, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeH264, ClockRate: 90000},
		"video", "scrcpy-mask-"+deviceID,
	)
	if err != nil {
		pc.Close()
		respondInternalError(c, "track error")
		return
	}
	sender, err := pc.AddTrack(track)
	if err != nil {
		pc.Close()
		respondInternalError(c, "add track error")
		return
	}

	peer := &webrtcPeer{
		id:    uuid.NewString(),
		scid:  ds.SCID,
		pc:    pc,
		track: track,
		pktz: rtp.NewPacketizer(1200, 96, uint32(time.Now().UnixNano()),
			&codecs.H264Payloader{}, rtp.NewRandomSequencer(), 90000),
	}
	ds.addPeer(peer.id, peer)

	goSafe("rtcp-reader-"+peer.id, func() {
		buf := make([]byte, 1500)
		for {
			n, _, err := sender.Read(buf)
			if err != nil {
				return
			}
			pkts, err := rtcp.Unmarshal(buf[:n])
			if err != nil {
				continue
			}
			for _, pkt := range pkts {
				switch pkt.(type) {
				case *rtcp.PictureLossIndication, *rtcp.FullIntraRequest:
					s.requestKeyframe(ds.SCID)
				}
			}
		}
	})

	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		dc.OnMessage(func(msg webrtc.DataChannelMessage) {
			s.dispatchWSMessage(msg.Data)
		})
	})

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		if state == webrtc.PeerConnectionStateFailed || state == webrtc.PeerConnectionStateClosed {
			ds.removePeer(peer.id)
		}
	})

	if err := pc.SetRemoteDescription(offer); err != nil {
		respondInternalError(c, "set remote description error")
		return
	}
	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		respondInternalError(c, "create answer error")
		return
	}
	if err := pc.SetLocalDescription(answer); err != nil {
		respondInternalError(c, "set local description error")
		return
	}
	<-webrtc.GatheringCompletePromise(pc)

	s.requestKeyframe(ds.SCID)

	c.JSON(200, pc.LocalDescription())
}

// requestKeyframe asks the companion to emit a fresh keyframe for scid.
// ResetVideo travels on the shared control bus, so every control socket
// currently attached receives it; only the one matching scid's companion
// process will see it land on a live video stream.
func (s *Server) requestKeyframe(scid string) {
	log.Debug().Str("component", "api").Str("scid", scid).Msg("requesting keyframe")
	s.ctrl.Bus().Publish(wire.ResetVideo{})
}
