package rtxdi

// FillNeighborOffsets fills buf with neighborOffsetCount (x, y) pairs of
// pixel offsets for spatial resampling, distributed over a disc using the R2
// low-discrepancy sequence. buf must hold 2*neighborOffsetCount int8 values.
func FillNeighborOffsets(buf []int8, neighborOffsetCount uint32) {
	if len(buf) < int(2*neighborOffsetCount) {
		panic("neighbor offset buffer is too small")
	}

	const r = 250
	const phi2 = 1.0 / 1.3247179572447

	num := uint32(0)
	u := float32(0.5)
	v := float32(0.5)
	for num < neighborOffsetCount*2 {
		u += phi2
		v += phi2 * phi2
		if u >= 1.0 {
			u -= 1.0
		}
		if v >= 1.0 {
			v -= 1.0
		}

		rSq := (u-0.5)*(u-0.5) + (v-0.5)*(v-0.5)
		if rSq > 0.25 {
			continue
		}

		buf[num] = int8((u - 0.5) * r)
		num++
		buf[num] = int8((v - 0.5) * r)
		num++
	}
}
