package gifcore

import "fmt"

// Settings holds the validated, immutable configuration for one encode.
// Built via NewSettings with functional options rather than a plain
// field-initialized struct, since Quality must be validated rather than
// merely defaulted.
type Settings struct {
	MaxWidth  *int
	MaxHeight *int
	Quality   int
	Fast      bool
	Once      bool
}

// Option configures a Settings value under construction.
type Option func(*Settings)

// WithWidth caps the output width.
func WithWidth(w int) Option {
	return func(s *Settings) { s.MaxWidth = &w }
}

// WithHeight caps the output height.
func WithHeight(h int) Option {
	return func(s *Settings) { s.MaxHeight = &h }
}

// WithQuality sets the quantization/LZW quality, 1..100.
func WithQuality(q int) Option {
	return func(s *Settings) { s.Quality = q }
}

// WithFast trades quality for speed by doubling the quantizer's NeuQuant
// sampling stride (see quant.sampleFactor), training the network on fewer
// sampled pixels per frame.
func WithFast(fast bool) Option {
	return func(s *Settings) { s.Fast = fast }
}

// WithOnce disables the Netscape looping extension, producing a
// single-playthrough GIF.
func WithOnce(once bool) Option {
	return func(s *Settings) { s.Once = once }
}

// NewSettings builds a validated Settings. Quality defaults to 90 and must
// land in 1..100; out-of-range values are a constructor-time error rather
// than silently clamped.
func NewSettings(opts ...Option) (Settings, error) {
	s := Settings{Quality: 90}
	for _, opt := range opts {
		opt(&s)
	}
	if s.Quality < 1 || s.Quality > 100 {
		return Settings{}, newErr(InvalidSettings, -1, fmt.Errorf("quality %d out of range 1..100", s.Quality))
	}
	if s.MaxWidth != nil && *s.MaxWidth < 1 {
		return Settings{}, newErr(InvalidSettings, -1, fmt.Errorf("width %d must be positive", *s.MaxWidth))
	}
	if s.MaxHeight != nil && *s.MaxHeight < 1 {
		return Settings{}, newErr(InvalidSettings, -1, fmt.Errorf("height %d must be positive", *s.MaxHeight))
	}
	return s, nil
}
