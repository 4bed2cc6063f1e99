package hps

// FrameCentres returns the analysis frame centres for a signal of length
// samples, an analysis window of windowSize samples and synthesis size ns.
// Centres start at max(ns/2, ceil(windowSize/2)) and advance by ns/4 while
// below length minus that start. Short signals yield no frames.
func FrameCentres(length, windowSize, ns int) []int {
	hop := ns / 4
	if hop < 1 || windowSize < 1 {
		return nil
	}

	start := max(ns/2, (windowSize+1)/2)
	end := length - start

	var centres []int
	for pin := start; pin < end; pin += hop {
		centres = append(centres, pin)
	}

	return centres
}

// residualOffset returns the first input sample of the Ns-point residual and
// synthesis frame for a frame centred at pin. The sample at pin-1 lands on
// the frame's zero-phase origin.
func residualOffset(pin, ns int) int {
	return pin - ns/2 - 1
}

// readFrame copies src[offset:offset+len(dst)] into dst, zero-filling the
// samples that fall outside src.
func readFrame(dst, src []float64, offset int) {
	for i := range dst {
		j := offset + i
		if j < 0 || j >= len(src) {
			dst[i] = 0
			continue
		}
		dst[i] = src[j]
	}
}
