// Package cli implements the weavctl command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/platformbuilds/weaviate-client-go/internal/config"
	"github.com/platformbuilds/weaviate-client-go/internal/tracing"
	"github.com/platformbuilds/weaviate-client-go/pkg/logger"
	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

// SetVersionInfo sets the version information from build flags.
func SetVersionInfo(v, c string) {
	version = v
	commit = c
}

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	cfgFile string
	output  string
	debug   bool

	cfg    *config.Config
	log    logger.Logger
	client *weaviate.Client
	tracer *tracing.TracerProvider

	clientOptions []weaviate.Option
}

// NewRootCommand builds the weavctl command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "weavctl",
		Short: "Inspect and load data into a Weaviate instance",
		Long: `weavctl talks to a Weaviate instance through the Go client.

Connection settings come from weavctl.yaml, WEAVIATE_* environment
variables or WEAVIATE_URL.

Examples:
  # Server version and modules
  weavctl meta

  # Print the schema as YAML
  weavctl schema get -o yaml

  # Import objects from a JSON array
  weavctl batch import objects.json`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./weavctl.yaml or $HOME/.config/weavctl/weavctl.yaml)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", outputJSON, "output format: json or yaml")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newVersionCommand(),
		newMetaCommand(a),
		newLiveCommand(a),
		newReadyCommand(a),
		newSchemaCommand(a),
		newObjectCommand(a),
		newBatchCommand(a),
		newGraphQLCommand(a),
		newNodesCommand(a),
	)
	return root
}

// Execute runs weavctl with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	if a.output != outputJSON && a.output != outputYAML {
		return fmt.Errorf("unsupported output format %q", a.output)
	}

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.LogLevel = "debug"
	}
	a.cfg = cfg
	a.log = logger.New(cfg.LogLevel)

	if cfg.Tracing.Enabled {
		a.tracer, err = tracing.NewTracerProvider(cmd.Context(), cfg.Tracing.ServiceName, version, cfg.Tracing.Endpoint, cfg.Tracing.Insecure)
		if err != nil {
			a.log.Warn("tracing disabled", "error", err)
		}
	}

	a.client, err = weaviate.New(cfg.ClientConfig(a.log), a.clientOptions...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	a.log.Debug("weavctl connected", "scheme", cfg.Scheme, "host", cfg.Host, "grpc", cfg.GRPCHost != "")
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	var err error
	if a.client != nil {
		err = a.client.Close()
	}
	if a.tracer != nil {
		if shutdownErr := a.tracer.Shutdown(ctx); shutdownErr != nil {
			a.log.Warn("failed to flush traces", "error", shutdownErr)
		}
	}
	return err
}

// print writes v in the selected output format. YAML keeps the JSON field
// names of the API models.
func (a *app) print(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if a.output == outputJSON {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return enc.Close()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "weavctl %s (commit %s)\n", version, commit)
		},
	}
}
