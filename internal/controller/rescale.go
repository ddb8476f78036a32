package controller

// rescaleCoord maps a coordinate authored against origSpan pixels onto a
// live span of devSpan pixels.
func rescaleCoord(coord int32, origSpan, devSpan uint32) int32 {
	if origSpan == 0 {
		return coord
	}
	return int32(float64(coord) * float64(devSpan) / float64(origSpan))
}
