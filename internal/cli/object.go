package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newObjectCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "object",
		Short: "Read and remove single objects",
	}
	cmd.AddCommand(newObjectGetCommand(a), newObjectDeleteCommand(a))
	return cmd
}

type objectFlags struct {
	className   string
	tenant      string
	consistency string
}

func (f *objectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.className, "class", "", "class of the object")
	cmd.Flags().StringVar(&f.tenant, "tenant", "", "tenant owning the object")
	cmd.Flags().StringVar(&f.consistency, "consistency-level", "", "ONE, QUORUM or ALL")
}

func newObjectGetCommand(a *app) *cobra.Command {
	var (
		flags      objectFlags
		withVector bool
	)
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print one object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			getter := a.client.Data().ObjectsGetter().
				WithID(args[0]).
				WithClassName(flags.className).
				WithTenant(flags.tenant).
				WithConsistencyLevel(consistency(a, flags.consistency))
			if withVector {
				getter = getter.WithVector()
			}
			res := getter.Run(cmd.Context())
			if err := res.Err(); err != nil {
				return fmt.Errorf("failed to get object %s: %w", args[0], err)
			}
			if len(res.Payload) == 0 {
				return fmt.Errorf("object %s not found", args[0])
			}
			return a.print(cmd.OutOrStdout(), res.Payload[0])
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&withVector, "vector", false, "include the object vector")
	return cmd
}

func newObjectDeleteCommand(a *app) *cobra.Command {
	var flags objectFlags
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.client.Data().Deleter().
				WithID(args[0]).
				WithClassName(flags.className).
				WithTenant(flags.tenant).
				WithConsistencyLevel(consistency(a, flags.consistency)).
				Run(cmd.Context())
			if err := res.Err(); err != nil {
				return fmt.Errorf("failed to delete object %s: %w", args[0], err)
			}
			if !res.Payload {
				return fmt.Errorf("object %s was not deleted (status %d)", args[0], res.StatusCode)
			}
			return a.print(cmd.OutOrStdout(), map[string]interface{}{"id": args[0], "deleted": true})
		},
	}
	flags.register(cmd)
	return cmd
}

// consistency prefers the flag over the configured default.
func consistency(a *app, flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.ConsistencyLevel
}
