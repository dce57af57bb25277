package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newGraphQLCommand(a *app) *cobra.Command {
	var variables string
	cmd := &cobra.Command{
		Use:   "graphql <query>",
		Short: "Run a raw GraphQL query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := a.client.GraphQL().Raw().WithQuery(args[0])
			if variables != "" {
				vars := map[string]interface{}{}
				if err := json.Unmarshal([]byte(variables), &vars); err != nil {
					return fmt.Errorf("invalid --variables: %w", err)
				}
				raw = raw.WithVariables(vars)
			}
			res := raw.Run(cmd.Context())
			if err := res.Err(); err != nil {
				return fmt.Errorf("graphql request failed: %w", err)
			}
			if err := a.print(cmd.OutOrStdout(), res.Payload); err != nil {
				return err
			}
			if res.Payload != nil && len(res.Payload.Errors) > 0 {
				return fmt.Errorf("query returned %d errors", len(res.Payload.Errors))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&variables, "variables", "", "query variables as a JSON object")
	return cmd
}
