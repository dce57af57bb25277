package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSchemaCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect the schema",
	}
	cmd.AddCommand(newSchemaGetCommand(a), newSchemaShardsCommand(a))
	return cmd
}

func newSchemaGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get [class]",
		Short: "Print the whole schema or one class",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 0 {
				res := a.client.Schema().Getter().Run(ctx)
				if err := res.Err(); err != nil {
					return fmt.Errorf("failed to get schema: %w", err)
				}
				return a.print(cmd.OutOrStdout(), res.Payload)
			}

			res := a.client.Schema().ClassGetter().WithClassName(args[0]).Run(ctx)
			if err := res.Err(); err != nil {
				return fmt.Errorf("failed to get class %s: %w", args[0], err)
			}
			if res.Payload == nil {
				return fmt.Errorf("class %s not found", args[0])
			}
			return a.print(cmd.OutOrStdout(), res.Payload)
		},
	}
}

func newSchemaShardsCommand(a *app) *cobra.Command {
	var tenant string
	cmd := &cobra.Command{
		Use:   "shards <class>",
		Short: "List the shards of a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.client.Schema().ShardsGetter().WithClassName(args[0]).WithTenant(tenant).Run(cmd.Context())
			if err := res.Err(); err != nil {
				return fmt.Errorf("failed to get shards of %s: %w", args[0], err)
			}
			return a.print(cmd.OutOrStdout(), res.Payload)
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "", "report the shard of one tenant")
	return cmd
}
