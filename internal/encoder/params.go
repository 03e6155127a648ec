package encoder

import (
	"strconv"

	"webpconv/internal/config"
)

// DefaultPresetMethod is the compression method applied when no quality,
// method or lossless level is requested.
const DefaultPresetMethod = 6

// Params holds the optional cwebp compression settings. Nil fields are not
// passed to the encoder.
type Params struct {
	Quality        *int
	Method         *int
	Lossless       *int
	Multithreading bool
}

// ParamsFromConfig copies the encoder section into Params.
func ParamsFromConfig(cfg config.Encoder) Params {
	return Params{
		Quality:        cfg.Quality,
		Method:         cfg.Method,
		Lossless:       cfg.Lossless,
		Multithreading: cfg.Multithreading,
	}
}

// DefaultPreset reports whether none of quality, method or lossless is set.
func (p Params) DefaultPreset() bool {
	return p.Quality == nil && p.Method == nil && p.Lossless == nil
}

// Validate checks every set level against the cwebp ranges.
func (p Params) Validate() error {
	if err := config.ValidateLevel("quality", p.Quality, config.MaxQuality); err != nil {
		return err
	}
	if err := config.ValidateLevel("method", p.Method, config.MaxMethod); err != nil {
		return err
	}
	return config.ValidateLevel("lossless", p.Lossless, config.MaxLossless)
}

// Args returns the cwebp argument list for converting src into dst:
//
//	-quiet [-q N] [-m N] [-z N] [-mt] src -o dst
//
// With the default preset the only level flag is "-m 6".
func (p Params) Args(src, dst string) []string {
	args := []string{"-quiet"}
	if p.DefaultPreset() {
		args = append(args, "-m", strconv.Itoa(DefaultPresetMethod))
	} else {
		if p.Quality != nil {
			args = append(args, "-q", strconv.Itoa(*p.Quality))
		}
		if p.Method != nil {
			args = append(args, "-m", strconv.Itoa(*p.Method))
		}
		if p.Lossless != nil {
			args = append(args, "-z", strconv.Itoa(*p.Lossless))
		}
	}
	if p.Multithreading {
		args = append(args, "-mt")
	}
	return append(args, src, "-o", dst)
}
