// Package wavedump renders a captured audio buffer to a PNG waveform
// image, the same way the reference host's performance view plots
// frame times: gonum/plot for the line, vgimg for rasterizing it.
package wavedump

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Samples is one APU output buffer: interleaved stereo float32 frames
// in [-1, 1], the same shape HostCallbacks.WriteAudio receives.
type Samples []float32

// Left and Right de-interleave a stereo buffer into per-channel plot
// points.
func (s Samples) Left() plotter.XYs  { return channel(s, 0) }
func (s Samples) Right() plotter.XYs { return channel(s, 1) }

func channel(s Samples, offset int) plotter.XYs {
	pts := make(plotter.XYs, 0, len(s)/2)
	for i := offset; i < len(s); i += 2 {
		pts = append(pts, plotter.XY{X: float64(i / 2), Y: float64(s[i])})
	}
	return pts
}

// WriteWaveformPNG plots left and right channels of buf on a shared
// time axis and encodes the result as a PNG of width x height pixels.
func WriteWaveformPNG(w io.Writer, title string, buf Samples, width, height int) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "sample"
	p.Y.Label.Text = "amplitude"
	p.Y.Min, p.Y.Max = -1.1, 1.1

	left, err := plotter.NewLine(buf.Left())
	if err != nil {
		return fmt.Errorf("wavedump: left channel: %w", err)
	}
	left.Color = color.RGBA{R: 0x20, G: 0x90, B: 0xE0, A: 0xFF}

	right, err := plotter.NewLine(buf.Right())
	if err != nil {
		return fmt.Errorf("wavedump: right channel: %w", err)
	}
	right.Color = color.RGBA{R: 0xE0, G: 0x60, B: 0x20, A: 0xFF}

	p.Add(left, right)
	p.Legend.Add("L", left)
	p.Legend.Add("R", right)

	c := vgimg.New(vg.Length(width)*vg.Inch/96, vg.Length(height)*vg.Inch/96)
	dc := draw.New(c)
	p.Draw(dc)

	img := c.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		return png.Encode(w, rgba)
	}
	return png.Encode(w, img)
}
