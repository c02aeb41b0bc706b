package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/heataoi/internal/domain/raster"
	"github.com/okian/heataoi/internal/domain/types"
	"github.com/okian/heataoi/pkg/logger"
)

// SynthParams shapes a synthetic bundle.
type SynthParams struct {
	Rows, Cols int
	Hotspots   int
	Pixel      float64 // metres
	NaNFrac    float64
	Seed       uint64
}

// Bundle is an identify request plus the centres of the planted hotspots.
type Bundle struct {
	types.IdentifyRequest
	Planted []raster.Point `json:"planted"`
}

// Synthesize builds three layers with Gaussian heat islands on a mild
// background: hot, bare and low at each planted centre.
func Synthesize(ctx context.Context, p SynthParams) (Bundle, error) {
	switch {
	case p.Rows < 1 || p.Cols < 1:
		return Bundle{}, fmt.Errorf("grid %dx%d must have at least one cell", p.Rows, p.Cols)
	case p.Hotspots < 0:
		return Bundle{}, fmt.Errorf("hotspots %d must not be negative", p.Hotspots)
	case !(p.Pixel > 0) || math.IsInf(p.Pixel, 0):
		return Bundle{}, fmt.Errorf("pixel size %v must be positive", p.Pixel)
	case p.NaNFrac < 0 || p.NaNFrac >= 1:
		return Bundle{}, fmt.Errorf("nan fraction %v must be in [0, 1)", p.NaNFrac)
	}

	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))
	t := raster.FromOrigin(0, float64(p.Rows)*p.Pixel, p.Pixel, p.Pixel)

	type centre struct{ r, c float64 }
	centres := make([]centre, p.Hotspots)
	b := Bundle{Planted: make([]raster.Point, p.Hotspots)}
	for i := range centres {
		centres[i] = centre{r: rng.Float64() * float64(p.Rows), c: rng.Float64() * float64(p.Cols)}
		b.Planted[i] = t.Apply(centres[i].r, centres[i].c)
	}
	sigma := math.Max(1, float64(min(p.Rows, p.Cols))/12)

	temp := raster.NewGrid(p.Rows, p.Cols)
	veg := raster.NewGrid(p.Rows, p.Cols)
	height := raster.NewGrid(p.Rows, p.Cols)
	for r := 0; r < p.Rows; r++ {
		for c := 0; c < p.Cols; c++ {
			var heat float64
			for _, ce := range centres {
				dr, dc := float64(r)+0.5-ce.r, float64(c)+0.5-ce.c
				heat += math.Exp(-(dr*dr + dc*dc) / (2 * sigma * sigma))
			}
			heat = math.Min(heat, 1)
			temp.Set(r, c, 25+10*heat+0.3*rng.NormFloat64())
			veg.Set(r, c, clamp01(0.7-0.6*heat+0.05*rng.NormFloat64()))
			height.Set(r, c, math.Max(0, 15-12*heat+rng.NormFloat64()))
		}
	}

	log := logger.Get().Named("synth")
	log.Debug(ctx, "synthetic layers generated",
		logger.Int("rows", p.Rows),
		logger.Int("cols", p.Cols),
		logger.Float64("temperature_mean", stat.Mean(temp.Data, nil)),
		logger.Float64("temperature_max", floats.Max(temp.Data)),
		logger.Float64("temperature_min", floats.Min(temp.Data)),
	)

	if p.NaNFrac > 0 {
		for _, g := range []*raster.Grid{temp, veg, height} {
			for i := range g.Data {
				if rng.Float64() < p.NaNFrac {
					g.Data[i] = math.NaN()
				}
			}
		}
	}

	b.IdentifyRequest = types.IdentifyRequest{
		Temperature: temp,
		Vegetation:  veg,
		Height:      height,
		Transform:   t,
		TopN:        max(p.Hotspots, 1),
	}
	return b, nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func newSynthCmd() *cobra.Command {
	var (
		p      SynthParams
		output string
	)
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Write a synthetic identify bundle.",
		Long: `synth generates temperature, vegetation and height grids with planted heat
islands, for smoke tests of identify and the HTTP API. Use --output - to write
to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := Synthesize(cmd.Context(), p)
			if err != nil {
				return err
			}
			if output == "-" {
				return writeJSON(cmd.OutOrStdout(), b)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			if err := writeBundle(f, b); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().IntVar(&p.Rows, "rows", 200, "grid rows")
	cmd.Flags().IntVar(&p.Cols, "cols", 200, "grid columns")
	cmd.Flags().IntVar(&p.Hotspots, "hotspots", 3, "number of planted heat islands")
	cmd.Flags().Float64Var(&p.Pixel, "pixel", 30, "pixel size in metres")
	cmd.Flags().Float64Var(&p.NaNFrac, "nan-frac", 0, "fraction of cells set to missing")
	cmd.Flags().Uint64Var(&p.Seed, "seed", 1, "random seed")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func writeBundle(w io.Writer, b Bundle) error {
	if err := writeJSON(w, b); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	return nil
}
