package chaninfo

import "math"

// PulseShapeNorm scales PulseShape to a unit peak height.
const PulseShapeNorm = math.E

// PulseShape is the electronics response at time t after a delta charge
// deposit. The peak is at t == peakTime; rise and fall set the steepness of
// the two edges. Arguments above 40 are cut to zero before the exponential.
func PulseShape(t float64, peakTime float64, rise float64, fall float64) float64 {
	if t < 0.0 {
		return 0.0
	}
	arg := t / peakTime
	if arg < 1.0 {
		arg = math.Pow(arg, rise)
	} else {
		arg = math.Pow(arg, fall)
	}
	if arg < 40 {
		return arg * math.Exp(-arg)
	}
	return 0.0
}
