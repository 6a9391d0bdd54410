// voxelctl is a CLI utility for carving voxel grids and running them through
// the slice predictor.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/voxelslice/internal/config"
	"github.com/Faultbox/voxelslice/internal/dataset"
	"github.com/Faultbox/voxelslice/internal/logger"
	"github.com/Faultbox/voxelslice/internal/network"
	"github.com/Faultbox/voxelslice/internal/predict"
	"github.com/Faultbox/voxelslice/internal/session"
	"github.com/Faultbox/voxelslice/pkg/slicecodec"
	"github.com/Faultbox/voxelslice/pkg/voxel"
)

func main() {
	// Global flags (-config, -debug, -seed, ...) precede the command
	config.ParseFlags()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	if command == "help" || command == "-h" || command == "--help" {
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "carve":
		err = cmdCarve(cfg, args)
	case "encode":
		err = cmdEncode(cfg, args)
	case "refresh":
		err = cmdRefresh(ctx, cfg, args)
	case "dataset", "ds":
		err = cmdDataset(ctx, cfg, args)
	case "serve-identity", "serve":
		err = cmdServe(ctx, cfg, args)
	case "config":
		err = cmdConfig(cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`voxelctl - voxel grid carving and slice prediction utility

Usage:
  voxelctl [global options] <command> [options]

Global options:
  -config <file>     Config file (default: ./voxelslice.yaml)
  -debug             Enable debug logging
  -seed <n>          Random seed
  -size <n>          Grid edge length
  -predictor <addr>  Use the remote predictor at addr
  -output <dir>      Dataset output directory

Commands:
  carve   [-n N] [-at x,y,z] [-ray o,d]      Carve rectangles and print statistics
  encode  [-n N] [-axis layer|section] [-slice i] <out.png>
                                             Carve, then write one slice as PNG
  refresh [-n N] [-all] [-overlay state] [-out file.png]
                                             Carve, then run one predict/merge cycle
  dataset [-samples N]                       Generate carved ground layer images
  serve-identity [addr]                      Run an echo prediction server
  config  [-save]                            Print (or save) the effective config

Examples:
  voxelctl -seed 7 carve -n 5
  voxelctl encode -axis section -slice 3 section3.png
  voxelctl -predictor 127.0.0.1:7070 refresh -all -out layer0.png
  voxelctl -output ./samples dataset -samples 100`)
}

func newSession(cfg *config.Config) (*session.Session, func(), error) {
	var (
		p       predict.Predictor = predict.Identity{}
		cleanup                   = func() {}
	)

	if cfg.Predictor.Kind == "remote" {
		client := network.New()
		client.Timeout = cfg.Predictor.Timeout

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Predictor.Timeout)
		defer cancel()
		if err := client.Connect(ctx, cfg.Predictor.Address); err != nil {
			return nil, nil, err
		}
		p = client
		cleanup = client.Disconnect
	}

	s, err := session.New(cfg, p)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return s, cleanup, nil
}

func cmdCarve(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("carve", flag.ExitOnError)
	amount := fs.Int("n", cfg.Dataset.MinAmount, "Number of ground rectangles")
	at := fs.String("at", "", "Carve at voxel x,y,z using the carve config instead")
	ray := fs.String("ray", "", "Carve at the first voxel hit by ray ox,oy,oz,dx,dy,dz")
	fs.Parse(args)

	s, cleanup, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	switch {
	case *ray != "":
		r, err := parseRay(*ray)
		if err != nil {
			return err
		}
		idx, ok, err := s.CarveRay(r)
		if err != nil {
			return err
		}
		fmt.Printf("Picked %s (carved: %v)\n", idx, ok)
	case *at != "":
		idx, err := voxel.ParseIndex(*at)
		if err != nil {
			return err
		}
		ok, err := s.CarveAt(idx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("Nothing carved at %s\n", idx)
		}
	default:
		if err := s.CarveRandomRectangles(*amount, cfg.Dataset.MinRadius, cfg.Dataset.MaxRadius); err != nil {
			return err
		}
	}

	printStats(s.Grid)
	return nil
}

func cmdEncode(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	amount := fs.Int("n", cfg.Dataset.MinAmount, "Number of ground rectangles to carve first")
	axisName := fs.String("axis", "layer", "Slice axis: layer or section")
	slice := fs.Int("slice", 0, "Slice index")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: voxelctl encode [options] <out.png>")
	}

	axis, err := parseAxis(*axisName)
	if err != nil {
		return err
	}

	s, cleanup, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := s.CarveRandomRectangles(*amount, cfg.Dataset.MinRadius, cfg.Dataset.MaxRadius); err != nil {
		return err
	}

	img, err := s.EncodeSlice(axis, *slice)
	if err != nil {
		return err
	}
	if err := dataset.SavePNG(fs.Arg(0), img); err != nil {
		return err
	}

	fmt.Printf("Wrote %s %d (%dx%d) to %s\n", axis, *slice, img.Bounds().Dx(), img.Bounds().Dy(), fs.Arg(0))
	return nil
}

func cmdRefresh(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("refresh", flag.ExitOnError)
	amount := fs.Int("n", cfg.Dataset.MinAmount, "Number of ground rectangles to carve first")
	all := fs.Bool("all", false, "Refresh every layer instead of layer 0 only")
	overlay := fs.String("overlay", voxel.Red.String(), "State cleared before predicting")
	out := fs.String("out", "", "Write layer 0 after the refresh to this PNG")
	fs.Parse(args)

	tag, err := voxel.ParseFunctionState(*overlay)
	if err != nil {
		return err
	}

	s, cleanup, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	s.OverlayTag = tag

	if err := s.CarveRandomRectangles(*amount, cfg.Dataset.MinRadius, cfg.Dataset.MaxRadius); err != nil {
		return err
	}

	rep, err := s.Refresh(ctx, *all)
	fmt.Printf("Cleared:  %d\n", rep.Cleared)
	fmt.Printf("Layers:   %d\n", rep.Layers)
	fmt.Printf("Sections: %d\n", rep.Sections)
	fmt.Printf("Failed:   %d\n", rep.Failed)
	if err != nil {
		return err
	}

	printStats(s.Grid)

	if *out != "" {
		img, err := s.EncodeSlice(slicecodec.Layer, 0)
		if err != nil {
			return err
		}
		if err := dataset.SavePNG(*out, img); err != nil {
			return err
		}
		fmt.Printf("Wrote layer 0 to %s\n", *out)
	}
	return nil
}

func cmdDataset(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("dataset", flag.ExitOnError)
	samples := fs.Int("samples", cfg.Dataset.SampleSize, "Number of images to generate")
	transparent := fs.Bool("transparent", cfg.Dataset.Transparent, "Write carved voxels as transparent pixels")
	fs.Parse(args)

	dsCfg := cfg.Dataset
	dsCfg.SampleSize = *samples
	dsCfg.Transparent = *transparent

	s, cleanup, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	sum, err := dataset.NewGenerator(s, dsCfg).Generate(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Samples:  %d\n", sum.Samples)
	fmt.Printf("Carved:   %d voxels (%.1f ± %.1f per sample)\n", sum.Carved, sum.CarvedMean, sum.CarvedStdDev)
	fmt.Printf("Output:   %s\n", sum.OutputDir)
	if sum.Manifest != "" {
		fmt.Printf("Manifest: %s\n", sum.Manifest)
	}
	fmt.Printf("Took:     %s\n", sum.Elapsed)
	return nil
}

func cmdServe(ctx context.Context, cfg *config.Config, args []string) error {
	addr := cfg.Predictor.Address
	if len(args) > 0 {
		addr = args[0]
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	logger.Info("identity prediction server listening", zap.String("addr", ln.Addr().String()))
	return network.NewServer(predict.Identity{}).Serve(ctx, ln)
}

func cmdConfig(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	save := fs.Bool("save", false, "Save to the user config directory")
	fs.Parse(args)

	if *save {
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Saved to %s\n", config.ConfigDir())
		return nil
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	os.Stdout.Write(data)
	return nil
}

func printStats(g *voxel.Grid) {
	size := g.Size()
	active := g.ActiveCount()
	fmt.Printf("Grid:     %s\n", size)
	fmt.Printf("Active:   %d / %d\n", active, g.Len())
	fmt.Printf("Carved:   %d\n", g.Len()-active)

	counts := g.CountByState()
	for _, st := range voxel.FunctionStates() {
		if n := counts[st]; n > 0 {
			fmt.Printf("  %-10s %d\n", st, n)
		}
	}
}

func parseAxis(s string) (slicecodec.Axis, error) {
	switch strings.ToLower(s) {
	case "layer", "l", "y":
		return slicecodec.Layer, nil
	case "section", "s", "z":
		return slicecodec.Section, nil
	}
	return 0, fmt.Errorf("unknown axis %q", s)
}

func parseRay(s string) (voxel.Ray, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return voxel.Ray{}, fmt.Errorf("ray must be ox,oy,oz,dx,dy,dz, got %q", s)
	}
	var v [6]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return voxel.Ray{}, fmt.Errorf("ray %q: %w", s, err)
		}
		v[i] = float32(f)
	}
	return voxel.Ray{
		Origin:    mgl32.Vec3{v[0], v[1], v[2]},
		Direction: mgl32.Vec3{v[3], v[4], v[5]},
	}, nil
}
