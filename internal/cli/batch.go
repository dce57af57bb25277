package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/platformbuilds/weaviate-client-go/pkg/weaviate/batch"
)

const defaultBatchSize = 100

// importSummary is printed after a batch import.
type importSummary struct {
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Errors    []importFailure `json:"errors,omitempty"`
}

type importFailure struct {
	ID      string   `json:"id"`
	Class   string   `json:"class"`
	Message []string `json:"message"`
}

func newBatchCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Bulk operations",
	}
	cmd.AddCommand(newBatchImportCommand(a))
	return cmd
}

func newBatchImportCommand(a *app) *cobra.Command {
	var (
		batchSize   int
		consistency string
	)
	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import objects from a JSON array file",
		Long: `Import objects from a file holding a JSON array of objects:

  [{"class": "Pizza", "id": "...", "properties": {"name": "Hawaii"}}]

Objects without an id get one assigned. The gRPC batch API is used when
grpc_host is configured and the server supports it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			objects, err := readObjects(args[0])
			if err != nil {
				return err
			}
			if batchSize <= 0 {
				batchSize = defaultBatchSize
			}
			if consistency == "" {
				consistency = a.cfg.ConsistencyLevel
			}

			summary := importSummary{Total: len(objects)}
			api := a.client.Batch()
			for start := 0; start < len(objects); start += batchSize {
				end := min(start+batchSize, len(objects))
				res := api.ObjectsBatcher().
					WithObjects(objects[start:end]...).
					WithConsistencyLevel(consistency).
					Run(cmd.Context())
				if err := res.Err(); err != nil {
					return fmt.Errorf("batch %d-%d failed: %w", start, end, err)
				}
				for _, item := range res.Payload {
					if !item.Failed() {
						summary.Succeeded++
						continue
					}
					summary.Failed++
					summary.Errors = append(summary.Errors, failure(item))
				}
				a.log.Debug("batch imported", "from", start, "to", end)
			}

			if err := a.print(cmd.OutOrStdout(), summary); err != nil {
				return err
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d objects failed", summary.Failed, summary.Total)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", defaultBatchSize, "objects per request")
	cmd.Flags().StringVar(&consistency, "consistency-level", "", "ONE, QUORUM or ALL")
	return cmd
}

func readObjects(path string) ([]*models.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var objects []*models.Object
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for _, obj := range objects {
		if obj == nil {
			continue
		}
		if props, ok := obj.Properties.(map[string]interface{}); ok {
			obj.Properties = normalizeProperties(props)
		}
	}
	return objects, nil
}

// normalizeProperties replaces the []interface{} lists produced by
// encoding/json with typed slices so scalar arrays keep their type on the
// gRPC batch path. Lists of objects and mixed lists are left as they are.
func normalizeProperties(props map[string]interface{}) map[string]interface{} {
	for name, value := range props {
		props[name] = normalizeValue(value)
	}
	return props
}

func normalizeValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return normalizeProperties(v)
	case []interface{}:
		if len(v) == 0 {
			return v
		}
		switch v[0].(type) {
		case string:
			if out, ok := typedSlice[string](v); ok {
				return out
			}
		case float64:
			if out, ok := typedSlice[float64](v); ok {
				return out
			}
		case bool:
			if out, ok := typedSlice[bool](v); ok {
				return out
			}
		}
		for i, elem := range v {
			if m, ok := elem.(map[string]interface{}); ok {
				v[i] = normalizeProperties(m)
			}
		}
		return v
	default:
		return value
	}
}

func typedSlice[T any](list []interface{}) ([]T, bool) {
	out := make([]T, len(list))
	for i, elem := range list {
		t, ok := elem.(T)
		if !ok {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}

func failure(item batch.ObjectResponse) importFailure {
	f := importFailure{ID: item.ID.String(), Class: item.Class}
	if item.Result != nil && item.Result.Errors != nil {
		for _, e := range item.Result.Errors.Error {
			if e != nil {
				f.Message = append(f.Message, e.Message)
			}
		}
	}
	return f
}
