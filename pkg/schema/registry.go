package schema

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/sr"
)

// SchemaRegistry resolves schema ids through a Confluent compatible
// schema registry.
type SchemaRegistry struct {
	client *sr.Client
}

func NewSchemaRegistry(client *sr.Client) SchemaRegistry {
	return SchemaRegistry{client}
}

// DetermineID registers the schema under the subject. The registry
// returns the existing id when the same schema is already registered.
func (r SchemaRegistry) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (int, error) {
	const op = "SchemaRegistry.DetermineID"

	ss, err := r.client.CreateSchema(ctx, subject, sr.Schema{
		Schema: avroSchemaText,
		Type:   sr.TypeAvro,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return ss.ID, nil
}
