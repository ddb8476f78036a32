// Package video adapts the wire package's framed H.264/H.265/AV1 packets
// into decoded RGBA frames for the facade, and provides the small
// Annex-B/SPS helpers the decoder needs along the way.
package video

import "bytes"

// NALUType returns the NAL unit type nibble (bits 0-4 of the first header
// byte).
func NALUType(nalu []byte) byte {
	if len(nalu) == 0 {
		return 0
	}
	return nalu[0] & 0x1F
}

// SplitAnnexB splits an Annex-B bitstream into individual NAL units,
// recognizing both 3-byte (00 00 01) and 4-byte (00 00 00 01) start codes.
func SplitAnnexB(data []byte) [][]byte {
	var nalus [][]byte
	start := -1
	for i := 0; i+3 <= len(data); {
		if data[i] != 0 || data[i+1] != 0 {
			i++
			continue
		}
		if data[i+2] == 1 {
			if start >= 0 {
				nalus = append(nalus, data[start:i])
			}
			start = i + 3
			i += 3
		} else if i+3 < len(data) && data[i+2] == 0 && data[i+3] == 1 {
			if start >= 0 {
				nalus = append(nalus, data[start:i])
			}
			start = i + 4
			i += 4
		} else {
			i++
		}
	}
	if start >= 0 && start < len(data) {
		nalus = append(nalus, data[start:])
	}
	return nalus
}

// HasIDR reports whether any NALU in the list is an IDR slice (type 5).
func HasIDR(nalus [][]byte) bool {
	for _, n := range nalus {
		if NALUType(n) == 5 {
			return true
		}
	}
	return false
}

// FilterByType returns only the NALUs matching naluType.
func FilterByType(nalus [][]byte, naluType byte) [][]byte {
	var out [][]byte
	for _, n := range nalus {
		if NALUType(n) == naluType {
			out = append(out, n)
		}
	}
	return out
}

// CountByType tallies SPS/PPS/IDR/other NALUs in one pass.
func CountByType(nalus [][]byte) (sps, pps, idr, others int) {
	for _, n := range nalus {
		switch NALUType(n) {
		case 7:
			sps++
		case 8:
			pps++
		case 5:
			idr++
		default:
			others++
		}
	}
	return
}

// EqualNALU reports whether a and b have identical contents.
func EqualNALU(a, b []byte) bool {
	return bytes.Equal(a, b)
}

// bitReader is a big-endian, MSB-first bit cursor used only for SPS
// Exp-Golomb fields.
type bitReader struct {
	data []byte
	pos  int // bit offset
}

func (r *bitReader) u(n int) (uint, bool) {
	var v uint
	for i := 0; i < n; i++ {
		byteIdx := r.pos / 8
		if byteIdx >= len(r.data) {
			return 0, false
		}
		bitIdx := 7 - (r.pos % 8)
		bit := (r.data[byteIdx] >> uint(bitIdx)) & 1
		v = v<<1 | uint(bit)
		r.pos++
	}
	return v, true
}

func (r *bitReader) skip(n int) bool {
	_, ok := r.u(n)
	return ok
}

// ue reads an Exp-Golomb unsigned value.
func (r *bitReader) ue() (uint, bool) {
	zeros := 0
	for {
		b, ok := r.u(1)
		if !ok {
			return 0, false
		}
		if b != 0 {
			break
		}
		zeros++
	}
	if zeros == 0 {
		return 0, true
	}
	rest, ok := r.u(zeros)
	if !ok {
		return 0, false
	}
	return (1 << uint(zeros)) - 1 + rest, true
}

// se reads an Exp-Golomb signed value.
func (r *bitReader) se() (int, bool) {
	v, ok := r.ue()
	if !ok {
		return 0, false
	}
	if v%2 == 0 {
		return -int(v / 2), true
	}
	return int(v+1) / 2, true
}

func stripEmulationPrevention(nal []byte) []byte {
	out := make([]byte, 0, len(nal))
	for i := 1; i < len(nal); i++ { // skip the NALU header byte
		if i+2 < len(nal) && nal[i] == 0 && nal[i+1] == 0 && nal[i+2] == 3 {
			out = append(out, 0, 0)
			i += 2
			continue
		}
		out = append(out, nal[i])
	}
	return out
}

// SPSDimensions parses width/height out of a raw H.264 SPS NALU by walking
// its Exp-Golomb fields through the frame-cropping rectangle. Returns
// ok=false for anything it can't confidently parse rather than guessing.
func SPSDimensions(nal []byte) (width, height uint16, ok bool) {
	if len(nal) < 4 || NALUType(nal) != 7 {
		return 0, 0, false
	}
	profileIDC := nal[1]
	rbsp := stripEmulationPrevention(nal)
	br := bitReader{data: rbsp}

	if !br.skip(8 + 8 + 8) { // profile_idc, constraint_flags, level_idc
		return
	}
	if !skipUE(&br) { // seq_parameter_set_id
		return
	}

	chromaFormatIDC := uint(1)
	if isHighProfile(profileIDC) {
		v, k := br.ue()
		if !k {
			return
		}
		chromaFormatIDC = v
		if chromaFormatIDC == 3 && !br.skip(1) {
			return
		}
		if !skipUE(&br) || !skipUE(&br) || !br.skip(1) {
			return
		}
		scalingPresent, k := br.u(1)
		if !k {
			return
		}
		if scalingPresent == 1 && !skipScalingLists(&br, chromaFormatIDC) {
			return
		}
	}

	if !skipUE(&br) { // log2_max_frame_num_minus4
		return
	}
	pocType, k := br.ue()
	if !k {
		return
	}
	switch pocType {
	case 0:
		if !skipUE(&br) {
			return
		}
	case 1:
		if !br.skip(1) || !skipSE(&br) || !skipSE(&br) {
			return
		}
		n, k := br.ue()
		if !k {
			return
		}
		for i := uint(0); i < n; i++ {
			if !skipSE(&br) {
				return
			}
		}
	}

	if !skipUE(&br) || !br.skip(1) { // num_ref_frames, gaps_in_frame_num_value_allowed_flag
		return
	}

	picWidthMinus1, k := br.ue()
	if !k {
		return
	}
	picHeightMinus1, k := br.ue()
	if !k {
		return
	}
	frameMbsOnly, k := br.u(1)
	if !k {
		return
	}
	if frameMbsOnly == 0 && !br.skip(1) {
		return
	}
	if !br.skip(1) { // direct_8x8_inference_flag
		return
	}

	var cropLeft, cropRight, cropTop, cropBottom uint
	cropFlag, k := br.u(1)
	if !k {
		return
	}
	if cropFlag == 1 {
		if cropLeft, k = br.ue(); !k {
			return
		}
		if cropRight, k = br.ue(); !k {
			return
		}
		if cropTop, k = br.ue(); !k {
			return
		}
		if cropBottom, k = br.ue(); !k {
			return
		}
	}

	mbWidth := picWidthMinus1 + 1
	mbHeight := (picHeightMinus1 + 1) * (2 - frameMbsOnly)

	subW, subH := chromaSubsampling(chromaFormatIDC)
	cropUnitX := subW
	cropUnitY := subH * (2 - frameMbsOnly)

	w := int(mbWidth*16) - int((cropLeft+cropRight)*cropUnitX)
	h := int(mbHeight*16) - int((cropTop+cropBottom)*cropUnitY)
	if w <= 0 || h <= 0 || w > 65535 || h > 65535 {
		return 0, 0, false
	}
	return uint16(w), uint16(h), true
}

func isHighProfile(profileIDC byte) bool {
	switch profileIDC {
	case 100, 110, 122, 244, 44, 83, 86, 118, 128, 138, 139, 134:
		return true
	default:
		return false
	}
}

func chromaSubsampling(chromaFormatIDC uint) (subW, subH uint) {
	switch chromaFormatIDC {
	case 1:
		return 2, 2
	case 2:
		return 2, 1
	default:
		return 1, 1
	}
}

func skipUE(br *bitReader) bool { _, ok := br.ue(); return ok }
func skipSE(br *bitReader) bool { _, ok := br.se(); return ok }

func skipScalingLists(br *bitReader, chromaFormatIDC uint) bool {
	count := 8
	if chromaFormatIDC == 3 {
		count = 12
	}
	for i := 0; i < count; i++ {
		present, ok := br.u(1)
		if !ok {
			return false
		}
		if present == 0 {
			continue
		}
		size := 16
		if i >= 6 {
			size = 64
		}
		lastScale, nextScale := 8, 8
		for j := 0; j < size; j++ {
			if nextScale != 0 {
				delta, ok := br.se()
				if !ok {
					return false
				}
				nextScale = (lastScale + delta + 256) % 256
			}
			if nextScale != 0 {
				lastScale = nextScale
			}
		}
	}
	return true
}
