package rstb

import "fmt"

// timeScale maps a time unit to its power-of-ten exponent, matching the
// simulator's own precision convention (e.g. precision -12 == picoseconds).
func timeScale(unit string) (int8, error) {
	switch unit {
	case "fs":
		return -15, nil
	case "ps":
		return -12, nil
	case "ns":
		return -9, nil
	case "us":
		return -6, nil
	case "ms":
		return -3, nil
	case "s":
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTimeUnit, unit)
	}
}

// ldexp10 scales frac by ten to the exp, the base-10 analogue of math.Ldexp.
// A negative exp that does not evenly divide frac is rejected rather than
// truncated, since truncating time silently would corrupt scheduling.
func ldexp10(frac uint64, exp int8) (uint64, error) {
	if exp >= 0 {
		return frac * pow10(uint(exp)), nil
	}
	div := pow10(uint(-exp))
	if frac%div != 0 {
		return 0, ErrInexactTimeConversion
	}
	return frac / div, nil
}

func pow10(n uint) uint64 {
	r := uint64(1)
	for i := uint(0); i < n; i++ {
		r *= 10
	}
	return r
}

// GetSimTime converts the backend's current step count into the given
// unit (fs, ps, ns, us, ms, s). It returns ErrUnknownTimeUnit for an
// unrecognised unit string; it panics, wrapping ErrPrecisionTooFine, if unit
// is finer than the simulator's reported precision, and panics, wrapping
// ErrInexactTimeConversion, if the conversion would truncate. Both are
// testbench-authoring mistakes rather than recoverable runtime conditions,
// so there is no error return for them to propagate through.
func GetSimTime(b SimBackend, unit string) (uint64, error) {
	scale, err := timeScale(unit)
	if err != nil {
		return 0, err
	}
	precision := b.GetSimPrecision()
	if scale < precision {
		panic(fmt.Errorf("rstb: unit %q is finer than simulator precision %d: %w", unit, precision, ErrPrecisionTooFine))
	}
	steps := b.GetSimTimeSteps()
	v, err := ldexp10(steps, precision-scale)
	if err != nil {
		panic(fmt.Errorf("rstb: converting %d steps at precision %d to unit %q: %w", steps, precision, unit, err))
	}
	return v, nil
}

// GetSimSteps is the inverse of GetSimTime: it converts a duration
// expressed in unit into the backend's native step count. It returns
// ErrUnknownTimeUnit for an unrecognised unit string and panics, wrapping
// ErrInexactTimeConversion, if value is not a whole number of steps. A
// unit finer than the simulator's precision is accepted whenever the
// conversion is exact (5000 ps at ns precision is 5 steps).
func GetSimSteps(b SimBackend, value uint64, unit string) (uint64, error) {
	scale, err := timeScale(unit)
	if err != nil {
		return 0, err
	}
	precision := b.GetSimPrecision()
	v, err := ldexp10(value, scale-precision)
	if err != nil {
		panic(fmt.Errorf("rstb: converting %d %s to steps at precision %d: %w", value, unit, precision, err))
	}
	return v, nil
}
