package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/noriah/catvj/compositor"
	"github.com/noriah/catvj/effect"
)

// FrameWriter prints one line per frame: band levels, the mode and each
// layer's opacity, filter and transform.
type FrameWriter struct {
	w io.Writer
	b strings.Builder
}

var _ compositor.Output = &FrameWriter{}

func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// Write prints the frame.
func (fw *FrameWriter) Write(f compositor.Frame) error {
	fw.b.Reset()

	fmt.Fprintf(&fw.b, "%6.3f %6.3f %6.3f %6.3f %s %s",
		f.Bands.Bass, f.Bands.Mid, f.Bands.High, f.Bands.Overall,
		f.Mode, f.Gesture.Shape)

	for _, rp := range f.Layers {
		fmt.Fprintf(&fw.b, " | %s opacity=%s filter=%q transform=%q",
			rp.LayerID, effect.FormatNumber(rp.Opacity), rp.Filter, rp.Transform)

		if rp.Keyed != nil {
			b := rp.Keyed.Bounds()
			fmt.Fprintf(&fw.b, " keyed=%dx%d", b.Dx(), b.Dy())
		}
	}

	fw.b.WriteByte('\n')

	_, err := io.WriteString(fw.w, fw.b.String())
	return err
}
