// Command gifcore is a minimal front end over the gifcore pipeline: it
// decodes a list of PNG files, feeds them to a Collector at fps-derived
// timestamps, and drives the Writer to a file or stdout. The CLI is a
// thin collaborator around the core pipeline, not part of it.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gifcore/gifcore"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("gifcore", flag.ContinueOnError)
	output := fs.String("output", "", "output GIF path")
	fs.StringVar(output, "o", "", "output GIF path (shorthand)")
	fps := fs.Float64("fps", 10, "frames per second when no per-frame timing is available")
	quality := fs.Int("quality", 90, "quality 1-100")
	fast := fs.Bool("fast", false, "trade quality for speed")
	width := fs.Int("width", 0, "max output width")
	fs.IntVar(width, "W", 0, "max output width (shorthand)")
	height := fs.Int("height", 0, "max output height")
	fs.IntVar(height, "H", 0, "max output height (shorthand)")
	once := fs.Bool("once", false, "disable looping")
	quiet := fs.Bool("quiet", false, "suppress progress output")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	pngFiles := fs.Args()
	if len(pngFiles) == 0 {
		fmt.Fprintln(os.Stderr, "gifcore: at least one PNG input is required")
		return 2
	}
	if *output == "" {
		fmt.Fprintln(os.Stderr, "gifcore: --output/-o is required")
		return 2
	}

	opts := []gifcore.Option{gifcore.WithQuality(*quality), gifcore.WithFast(*fast), gifcore.WithOnce(*once)}
	if *width > 0 {
		opts = append(opts, gifcore.WithWidth(*width))
	}
	if *height > 0 {
		opts = append(opts, gifcore.WithHeight(*height))
	}

	settings, err := gifcore.NewSettings(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gifcore: %v\n", err)
		return 1
	}

	collector, writer := gifcore.New(settings)

	go func() {
		for i, path := range pngFiles {
			pts := float64(i) / *fps
			if err := collector.AddFramePNGFile(i, path, pts); err != nil {
				fmt.Fprintf(os.Stderr, "gifcore: %v\n", err)
			}
		}
		collector.Close()
	}()

	out, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gifcore: %v\n", err)
		return 1
	}
	defer out.Close()

	reporter := &cliProgress{quiet: *quiet, total: len(pngFiles)}
	if err := writer.Write(out, reporter); err != nil {
		fmt.Fprintf(os.Stderr, "gifcore: %v\n", err)
		return 1
	}
	return 0
}

// cliProgress is the ProgressReporter used by the CLI: plain stderr status
// lines instead of a progress bar library.
type cliProgress struct {
	quiet bool
	total int
	seen  int
}

func (p *cliProgress) Increase() bool {
	p.seen++
	if !p.quiet {
		fmt.Fprintf(os.Stderr, "gifcore: frame %d/%d\n", p.seen, p.total)
	}
	return true
}

func (p *cliProgress) Error(msg string) {
	fmt.Fprintf(os.Stderr, "gifcore: warning: %s\n", msg)
}

func (p *cliProgress) WrittenBytes(n int) {
	if !p.quiet {
		fmt.Fprintf(os.Stderr, "gifcore: wrote %d bytes\n", n)
	}
}
