package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/minkowski/internal/config"
	"github.com/roach88/minkowski/internal/engine"
	"github.com/roach88/minkowski/internal/spacetime"
)

// RootOptions holds global flags for all commands, resolved against the
// config file and environment before any command runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	LightSpeed float64
	Seed       int64
	Boundary   string

	// ScenarioDir is the default directory for `test`.
	ScenarioDir string

	// Logger receives engine logs. Nil discards them.
	Logger *slog.Logger

	// RunIDs generates simulation run ids. Nil uses UUIDv7.
	RunIDs engine.RunIDGenerator
}

// NewRootCommand creates the root command for the minkowski CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := config.New()

	cmd := &cobra.Command{
		Use:   "minkowski",
		Short: "Minkowski - 1+1D flat spacetime engine",
		Long: `Classify intervals, intersect world lines and drive simple simulations
in 1+1-dimensional Minkowski spacetime.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd, v)
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (default .minkowski.yaml)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.Float64VarP(&opts.LightSpeed, "light-speed", "c", spacetime.DefaultLightSpeed, "speed of light")
	flags.Int64Var(&opts.Seed, "seed", 0, "random seed (0 = non-deterministic)")
	flags.StringVar(&opts.Boundary, "boundary", string(engine.Inclusive), "grid boundary policy (inclusive|exclusive)")

	bindFlag(v, config.KeyVerbose, cmd, "verbose")
	bindFlag(v, config.KeyFormat, cmd, "format")
	bindFlag(v, config.KeyLightSpeed, cmd, "light-speed")
	bindFlag(v, config.KeySeed, cmd, "seed")
	bindFlag(v, config.KeyBoundary, cmd, "boundary")

	// Add subcommands
	cmd.AddCommand(NewClassifyCommand(opts))
	cmd.AddCommand(NewIntersectCommand(opts))
	cmd.AddCommand(NewLightCommand(opts))
	cmd.AddCommand(NewSpontaneousCommand(opts))
	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewDemoCommand(opts))

	return cmd
}

func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	// BindPFlag only fails for a nil flag, which would be a programming error.
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(name)); err != nil {
		panic(err)
	}
}

// resolve merges config file, environment and flags into opts and installs
// the logger.
func (o *RootOptions) resolve(cmd *cobra.Command, v *viper.Viper) error {
	if err := config.ReadFile(v, o.ConfigFile); err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	o.Verbose = cfg.Verbose
	o.Format = cfg.Format
	o.LightSpeed = cfg.LightSpeed
	o.Seed = cfg.Seed
	o.Boundary = cfg.Boundary
	o.ScenarioDir = cfg.ScenarioDir

	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

func (o *RootOptions) lightSpeed() float64 {
	if o.LightSpeed == 0 {
		return spacetime.DefaultLightSpeed
	}
	return o.LightSpeed
}

func (o *RootOptions) boundary() (engine.Boundary, error) {
	return engine.ParseBoundary(o.Boundary)
}

// newRunID returns the id for one engine run.
func (o *RootOptions) newRunID() string {
	if o.RunIDs == nil {
		return engine.UUIDv7Generator{}.Generate()
	}
	return o.RunIDs.Generate()
}

// stepper returns a Stepper whose runs are all tagged with runID.
func (o *RootOptions) stepper(runID string) *engine.Stepper {
	return engine.New(
		engine.WithLogger(o.logger()),
		engine.WithRunIDs(engine.NewFixedGenerator(runID)),
		engine.WithLightSpeed(o.lightSpeed()),
	)
}

// source returns a seeded random source, or nil for the engine default
// when no seed is configured.
func (o *RootOptions) source() engine.Source {
	if o.Seed == 0 {
		return nil
	}
	return engine.NewSeededSource(o.Seed)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}
