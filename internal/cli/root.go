package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/adapter"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/window"
	"github.com/Carmen-Shannon/oxy-sandbox/internal/config"
)

// runner renders with the resolved settings until the window closes.
type runner func(s config.Settings) error

// adapterLister enumerates the adapters of a backend. ok is false when the backend has no adapter list.
type adapterLister func(kind renderer.BackendKind) (adapters []adapter.Info, ok bool, err error)

type globalOptions struct {
	configPath   string
	backend      string
	adapterIndex int
	adapterClass string
	width        int
	height       int
	profile      bool
	verbose      bool
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(runSandbox, listAdapters)
}

func newRootCommand(run runner, list adapterLister) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:          "oxy-sandbox",
		Short:        "Render a triangle with the selected graphics backend",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSettings(cmd, opts)
			if err != nil {
				return err
			}
			return run(s)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a TOML config file (default "+config.DefaultPath()+")")
	flags.StringVar(&opts.backend, "backend", "", "Graphics backend: d3d11, d3d12, opengl, vulkan")
	flags.IntVar(&opts.adapterIndex, "adapter", 0, "Adapter index to use")
	flags.StringVar(&opts.adapterClass, "adapter-class", "", "Preferred adapter class: discrete, integrated, software")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output")
	root.Flags().IntVar(&opts.width, "width", 0, "Window width in pixels")
	root.Flags().IntVar(&opts.height, "height", 0, "Window height in pixels")
	root.Flags().BoolVar(&opts.profile, "profile", false, "Log frame rate and memory statistics every second")

	root.AddCommand(newAdaptersCommand(opts, list))
	root.AddCommand(newShadersCommand())
	return root
}

func newShadersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shaders",
		Short: "Compile the embedded shaders offline and report errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := []shader.Source{shader.TriangleVertex(), shader.TrianglePixel()}
			if err := shader.ValidateAll(sources...); err != nil {
				return WrapExit(ExitInitFailure, err)
			}
			for _, src := range sources {
				fmt.Fprintf(cmd.OutOrStdout(), "ok  %-7s %s (%s)\n", src.Type, src.Name, src.EntryPoint)
			}
			return nil
		},
	}
}

func newAdaptersCommand(opts *globalOptions, list adapterLister) *cobra.Command {
	return &cobra.Command{
		Use:   "adapters",
		Short: "List the adapters of the selected backend and mark the one that would be used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSettings(cmd, opts)
			if err != nil {
				return err
			}
			adapters, ok, err := list(s.Backend)
			if err != nil {
				return WrapExit(ExitInitFailure, err)
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintf(out, "%s does not enumerate adapters; the platform default adapter is used\n", s.Backend)
				return nil
			}
			sel, err := adapter.Select(adapters, s.Adapter)
			if err != nil {
				return WrapExit(ExitInitFailure, fmt.Errorf("%s: %w", s.Backend, err))
			}
			printAdapters(out, adapters, sel)
			return nil
		},
	}
}

// resolveSettings loads the config file, applies flags that were set, installs the logger and validates.
func resolveSettings(cmd *cobra.Command, opts *globalOptions) (config.Settings, error) {
	setupLogging(cmd.ErrOrStderr(), opts.verbose)

	cfg, err := config.Load(opts.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return config.Settings{}, WrapExit(ExitUsageError, err)
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = opts.backend
	}
	if flags.Changed("adapter") {
		idx := opts.adapterIndex
		cfg.AdapterIndex = &idx
	}
	if flags.Changed("adapter-class") {
		cfg.AdapterClass = opts.adapterClass
	}
	if flags.Changed("width") {
		cfg.Width = opts.width
	}
	if flags.Changed("height") {
		cfg.Height = opts.height
	}
	if flags.Changed("profile") {
		cfg.Profiling = opts.profile
	}

	s, err := cfg.Validate()
	if err != nil {
		return config.Settings{}, WrapExit(ExitUsageError, err)
	}
	return s, nil
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	common.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func printAdapters(w io.Writer, adapters []adapter.Info, sel adapter.Selection) {
	for _, a := range adapters {
		marker := " "
		if a.Index == sel.Index {
			marker = "*"
		}
		name := a.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s %d  %-10s  %s\n", marker, a.Index, a.Class, name)
	}
}

func runSandbox(s config.Settings) error {
	w, err := window.NewWindow(
		window.WithTitle(s.Title),
		window.WithWidth(s.Width),
		window.WithHeight(s.Height),
	)
	if err != nil {
		return WrapExit(ExitInitFailure, err)
	}

	e := engine.NewEngine(
		engine.WithWindow(w),
		engine.WithBackendKind(s.Backend, renderer.WithPowerPreference(s.PowerPref)),
		engine.WithAdapterRequest(s.Adapter),
		engine.WithSyncInterval(s.SyncInterval),
		engine.WithFrameDelay(s.FrameDelay),
		engine.WithProfiling(s.Profiling),
	)
	defer e.Close()

	if err := e.Init(); err != nil {
		return WrapExit(ExitInitFailure, err)
	}
	if err := e.InitPipeline(); err != nil {
		return WrapExit(ExitInitFailure, err)
	}
	common.Logger().Info("rendering", "backend", s.Backend.String(), "adapter", e.Adapter().Name)

	if err := e.Run(); err != nil {
		return WrapExit(ExitFrameFailure, err)
	}
	common.Logger().Info("exiting", "frames", e.Frames())
	return nil
}

func listAdapters(kind renderer.BackendKind) ([]adapter.Info, bool, error) {
	b, err := renderer.NewGraphicsBackend(kind)
	if err != nil {
		return nil, false, err
	}
	defer b.Release()
	if !b.SupportsAdapterEnumeration() {
		return nil, false, nil
	}
	adapters, err := b.EnumerateAdapters()
	if err != nil {
		return nil, false, err
	}
	return adapters, true, nil
}
