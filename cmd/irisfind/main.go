// Command irisfind locates the iris boundary in an eye image and prints the
// winning center and radius.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/iris-locator/internal/config"
	"github.com/ironsheep/iris-locator/internal/imaging"
	"github.com/ironsheep/iris-locator/internal/iris"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	params  iris.Params
	patch   imaging.PatchOptions
	workers int
	timeout time.Duration
	partial bool
	overlay string
	json    bool
	path    string
}

func parseFlags(args []string, cfg *config.Config, stderr io.Writer) (*options, error) {
	opts := &options{}
	var crop string

	fs := flag.NewFlagSet("irisfind", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: irisfind [flags] <image>")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}
	fs.IntVar(&opts.params.PointsStep, "points-step", cfg.Defaults.PointsStep, "spacing of candidate centers")
	fs.IntVar(&opts.params.Radius.Start, "start-r", cfg.Defaults.Radius.Start, "smallest tested radius")
	fs.IntVar(&opts.params.Radius.End, "end-r", cfg.Defaults.Radius.End, "radius bound (exclusive)")
	fs.IntVar(&opts.params.Radius.Step, "radius-step", cfg.Defaults.Radius.Step, "radius increment")
	fs.StringVar(&crop, "crop", "", "crop region `x1,y1,x2,y2` applied first")
	fs.BoolVar(&opts.patch.Square, "square", false, "crop the largest centered square")
	fs.IntVar(&opts.patch.Size, "size", 0, "resize the square patch to `n` x n pixels")
	fs.Float64Var(&opts.patch.Blur, "blur", 0, "Gaussian blur radius before searching")
	fs.IntVar(&opts.workers, "workers", cfg.Workers, "search worker pool size")
	fs.DurationVar(&opts.timeout, "timeout", cfg.Timeout, "search deadline (0 for none)")
	fs.BoolVar(&opts.partial, "partial", cfg.AllowPartial, "on deadline, report the best candidate so far")
	fs.StringVar(&opts.overlay, "overlay", "", "write an overlay PNG of the result to `file`")
	fs.BoolVar(&opts.json, "json", false, "print the result as JSON")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.New("expected exactly one image path")
	}
	opts.path = fs.Arg(0)

	if crop != "" {
		r, err := parseRegion(crop)
		if err != nil {
			return nil, err
		}
		opts.patch.Region = r
	}
	return opts, nil
}

// parseRegion parses "x1,y1,x2,y2".
func parseRegion(s string) (*imaging.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("crop %q: want x1,y1,x2,y2", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("crop %q: %w", s, err)
		}
		v[i] = n
	}
	return &imaging.Region{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "irisfind: %v\n", err)
		return 2
	}
	opts, err := parseFlags(args, cfg, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "irisfind: %v\n", err)
		return 2
	}

	logger := cfg.NewLogger(stderr)
	if err := find(opts, cfg, logger, stdout); err != nil {
		logger.WithError(err).WithField("path", opts.path).Error("search failed")
		return 1
	}
	return 0
}

func find(opts *options, cfg *config.Config, logger *logrus.Logger, stdout io.Writer) error {
	cache := imaging.NewImageCache()
	img, err := cache.Load(opts.path)
	if err != nil {
		return err
	}
	patch, err := imaging.PreparePatch(img, opts.patch)
	if err != nil {
		return err
	}

	searcher := cfg.Searcher(logger)
	searcher.Workers = opts.workers
	searcher.AllowPartial = opts.partial

	ctx := context.Background()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	res, err := searcher.FindBestCircle(ctx, patch, opts.params)
	if err != nil {
		return err
	}

	if opts.overlay != "" {
		best := iris.Candidate{Center: res.Center, Radius: res.Radius, Score: res.Score}
		out := imaging.Overlay(patch, imaging.OverlayOptions{
			Centers: iris.CandidateCenters(patch.Bounds().Dx(), opts.params.PointsStep),
			Best:    &best,
			Label:   true,
		})
		f, err := os.Create(opts.overlay)
		if err != nil {
			return fmt.Errorf("failed to create overlay: %w", err)
		}
		if err := png.Encode(f, out); err != nil {
			f.Close()
			return fmt.Errorf("failed to encode overlay: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write overlay: %w", err)
		}
	}

	if opts.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	partial := ""
	if res.Partial {
		partial = " (partial)"
	}
	_, err = fmt.Fprintf(stdout, "center=(%d,%d) radius=%d score=%.4f evaluated=%d%s\n",
		res.Center.X, res.Center.Y, res.Radius, res.Score, res.Evaluated, partial)
	return err
}
