package tevc

// Method selects the least-squares minimizer.
type Method int

const (
	LevenbergMarquardt Method = iota
	NelderMead
)

func (m Method) String() string {
	if m == NelderMead {
		return "nelder-mead"
	}
	return "levenberg-marquardt"
}

func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Settings holds the protocol-tuned constants of the analysis. They have no
// derivation beyond experience with the oocyte recordings; tune them per
// protocol rather than editing code.
type Settings struct {
	// PreLightOffset is subtracted from shutter-on to get the default start
	// of the pre-light window.
	PreLightOffset float64
	// PostLightOffset is subtracted from clamp-off to get the default start
	// of the post-light window.
	PostLightOffset float64
	// Extrapolation multiplies the last window time when the exponential
	// guesser extrapolates the steady state.
	Extrapolation float64
	// ChiSqThreshold rejects exponential fits with a larger reduced chi-square.
	ChiSqThreshold float64
	TauMin         float64
	TauMax         float64

	Method Method
	// Iterations caps a single solver run.
	Iterations int
}

func DefaultSettings() Settings {
	return Settings{
		PreLightOffset:  1.5,
		PostLightOffset: 0.5,
		Extrapolation:   4,
		ChiSqThreshold:  15,
		TauMin:          0,
		TauMax:          60,
		Method:          LevenbergMarquardt,
		Iterations:      1000,
	}
}
