// Command nichefmt prints SmolStr and SmallVec values the way a debugger
// shows them.
//
// Values come from a scene file (see package scene). Their bytes come from
// the scene's own segments and fixtures, optionally backed by the linear
// memory of a WebAssembly module (--wasm) or by a live process (--pid).
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/nichefmt"
	"github.com/wippyai/nichefmt/config"
	"github.com/wippyai/nichefmt/errors"
	"github.com/wippyai/nichefmt/formatter"
	"github.com/wippyai/nichefmt/memory"
	"github.com/wippyai/nichefmt/scene"
	"github.com/wippyai/nichefmt/smallvec"
	"github.com/wippyai/nichefmt/smolstr"
	"github.com/wippyai/nichefmt/tree"
)

type options struct {
	configPath  string
	scenePath   string
	wasmPath    string
	format      string
	color       string
	names       []string
	pid         int
	depth       int
	interactive bool
	debug       bool
}

func main() {
	var opts options
	pflag.StringVarP(&opts.configPath, "config", "c", "", "Configuration file (default $"+config.EnvVar+")")
	pflag.StringVarP(&opts.scenePath, "scene", "s", "", "Scene file (.yaml or .cbor)")
	pflag.StringVar(&opts.wasmPath, "wasm", "", "WebAssembly module whose linear memory backs the scene")
	pflag.IntVar(&opts.pid, "pid", 0, "Process whose memory backs the scene")
	pflag.StringVarP(&opts.format, "format", "f", "", "Output format: text, yaml or cbor")
	pflag.StringVar(&opts.color, "color", "", "Color mode: auto, always or never")
	pflag.IntVar(&opts.depth, "depth", 4, "How deep to expand children")
	pflag.BoolVarP(&opts.interactive, "interactive", "i", false, "Browse values in a TUI")
	pflag.BoolVar(&opts.debug, "debug", false, "Log every memory read and absorbed decode failure")
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: nichefmt --scene <file> [flags] [value...]")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	opts.names = pflag.Args()

	if opts.scenePath == "" {
		pflag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, w io.Writer) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.debug {
		cfg.Log.Level = "debug"
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
	}
	if opts.color != "" {
		cfg.Output.Color = opts.color
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "invalid configuration")
	}

	log, err := cfg.NewLogger()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	setLoggers(log)

	s, err := scene.Load(opts.scenePath)
	if err != nil {
		return err
	}
	built, err := s.Build()
	if err != nil {
		return err
	}

	mem, closeBackend, err := openBackend(ctx, opts, built.Image)
	if err != nil {
		return err
	}
	defer closeBackend()
	if opts.debug {
		mem = memory.Trace(mem, log.Named("memory"))
	}
	built.Host.SetMemory(mem)

	reg, err := newRegistry(cfg, log)
	if err != nil {
		return err
	}

	values, err := selectValues(built.Host, opts.names)
	if err != nil {
		return err
	}

	in := newInspector(reg, childLimit(cfg.Output.MaxChildren), max(opts.depth, 0))

	if opts.interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(in, values, opts.scenePath)
	}

	return write(w, cfg.Output, in, values)
}

func loadConfig(path string) (*config.Config, error) {
	switch {
	case path != "":
		return config.LoadFile(path)
	case os.Getenv(config.EnvVar) != "":
		return config.Load()
	default:
		return config.Default(), nil
	}
}

func setLoggers(log *zap.Logger) {
	smolstr.SetLogger(log.Named("smolstr"))
	smallvec.SetLogger(log.Named("smallvec"))
	formatter.SetLogger(log.Named("formatter"))
	scene.SetLogger(log.Named("scene"))
}

// openBackend layers the scene image over the optional live memory. The
// scene wins where both map an address.
func openBackend(ctx context.Context, opts options, image *memory.Image) (nichefmt.Memory, func(), error) {
	switch {
	case opts.wasmPath != "" && opts.pid != 0:
		return nil, nil, fmt.Errorf("--wasm and --pid are mutually exclusive")

	case opts.wasmPath != "":
		data, err := os.ReadFile(opts.wasmPath)
		if err != nil {
			return nil, nil, errors.Load("read "+opts.wasmPath, err)
		}
		inst, err := memory.OpenWasm(ctx, data)
		if err != nil {
			return nil, nil, err
		}
		return memory.Layered(image, inst.Memory()), func() { _ = inst.Close(ctx) }, nil

	case opts.pid != 0:
		proc, err := memory.OpenProcess(opts.pid)
		if err != nil {
			return nil, nil, err
		}
		return memory.Layered(image, proc), func() { _ = proc.Close() }, nil
	}
	return image, func() {}, nil
}

func newRegistry(cfg *config.Config, log *zap.Logger) (*formatter.Registry, error) {
	reg := formatter.NewRegistry()
	err := formatter.Install(reg,
		formatter.WithStringDecoder(smolstr.NewDecoder(
			smolstr.WithLayout(cfg.Layout.String),
			smolstr.WithLogger(log.Named("smolstr")),
		)),
		formatter.WithVectorDecoder(smallvec.NewDecoder(
			smallvec.WithLayout(cfg.Layout.Vector),
			smallvec.WithLogger(log.Named("smallvec")),
		)),
	)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// selectValues returns the named variables in argument order, or every
// variable when no names are given.
func selectValues(h *tree.Host, names []string) ([]nichefmt.Value, error) {
	if len(names) == 0 {
		vars := h.Variables()
		values := make([]nichefmt.Value, len(vars))
		for i, v := range vars {
			values[i] = v
		}
		return values, nil
	}

	values := make([]nichefmt.Value, 0, len(names))
	for _, name := range names {
		v, ok := h.Variable(name)
		if !ok {
			return nil, errors.NotFound(errors.PhaseResolve, "value", name)
		}
		values = append(values, v)
	}
	return values, nil
}

func write(w io.Writer, out config.OutputConfig, in *inspector, values []nichefmt.Value) error {
	switch out.Format {
	case config.FormatYAML, config.FormatCBOR:
		r := report{Values: make([]node, 0, len(values))}
		for _, v := range values {
			r.Values = append(r.Values, in.tree(v))
		}
		if out.Format == config.FormatCBOR {
			data, err := cbor.Marshal(r)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()

	default:
		return writeText(w, in, values, newPalette(w, out.Color))
	}
}
