package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/cluster"
)

func newMetaCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "meta",
		Short: "Show server version, hostname and modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.client.Misc().MetaGetter().Run(cmd.Context())
			if err := res.Err(); err != nil {
				return fmt.Errorf("failed to get meta: %w", err)
			}
			return a.print(cmd.OutOrStdout(), res.Payload)
		},
	}
}

func newLiveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "live",
		Short: "Check the liveness endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.client.Misc().LiveChecker().Run(cmd.Context())
			if err := res.Err(); err != nil {
				return fmt.Errorf("liveness check failed: %w", err)
			}
			return a.print(cmd.OutOrStdout(), map[string]bool{"live": res.Payload})
		},
	}
}

func newReadyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ready",
		Short: "Check the readiness endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.client.Misc().ReadyChecker().Run(cmd.Context())
			if err := res.Err(); err != nil {
				return fmt.Errorf("readiness check failed: %w", err)
			}
			if !res.Payload {
				return fmt.Errorf("server is not ready (status %d)", res.StatusCode)
			}
			return a.print(cmd.OutOrStdout(), map[string]bool{"ready": true})
		},
	}
}

func newNodesCommand(a *app) *cobra.Command {
	var (
		className string
		verbose   bool
	)
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "Show cluster node status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			getter := a.client.Cluster().NodesStatusGetter().WithClassName(className)
			if verbose {
				getter = getter.WithOutput(cluster.OutputVerbose)
			}
			res := getter.Run(cmd.Context())
			if err := res.Err(); err != nil {
				return fmt.Errorf("failed to get nodes: %w", err)
			}
			return a.print(cmd.OutOrStdout(), res.Payload)
		},
	}
	cmd.Flags().StringVar(&className, "class", "", "only report shards of this class")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "include per-shard statistics")
	return cmd
}
