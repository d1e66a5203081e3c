package schema_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/salesops/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSchemaIdentifier struct {
	mock.Mock
}

func (c *MockSchemaIdentifier) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (id int, err error) {
	args := c.Called(ctx, subject, avroSchemaText)
	return args.Int(0), args.Error(1)
}

func TestSerdeItemV1(t *testing.T) {

	t.Run("NoOpts", func(t *testing.T) {
		_, err := schema.NewSerdeItemV1(t.Context())
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("OneOpt", func(t *testing.T) {
		_, err := schema.NewSerdeItemV1(
			t.Context(),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("EmptySubject", func(t *testing.T) {
		_, err := schema.NewSerdeItemV1(
			t.Context(),
			schema.SubjectOpt(""),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		require.Error(t, err)
	})

	t.Run("RegistryError", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		subject := "items_from_books-value"
		registryErr := errors.New("registry unavailable")

		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.ItemSchemaTextV1,
		).Return(0, registryErr)

		_, err := schema.NewSerdeItemV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		assert.ErrorIs(t, err, registryErr)
	})

	t.Run("EncodeDecode", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		schemaID := 1
		subject := "items_from_books-value"

		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.ItemSchemaTextV1,
		).Return(schemaID, nil)

		serde, err := schema.NewSerdeItemV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.NoError(t, err)

		ts := time.Date(2026, 9, 1, 5, 0, 0, 0, time.UTC)
		itemValue1 := schema.ItemV1{
			ItemID:    "460000000026049",
			Name:      "Harness Red (XL)",
			Brand:     "Fofos",
			Rate:      1250.5,
			Stock:     12,
			Status:    "active",
			Unit:      "pcs",
			CreatedAt: ts,
			UpdatedAt: ts,
		}

		encodedData, err := serde.Encode(itemValue1)
		require.NoError(t, err)

		var itemValue2 schema.ItemV1
		err = serde.Decode(encodedData, &itemValue2)
		require.NoError(t, err)

		assert.Equal(t, itemValue1.ItemID, itemValue2.ItemID)
		assert.Equal(t, itemValue1.Name, itemValue2.Name)
		assert.Equal(t, itemValue1.Brand, itemValue2.Brand)
		assert.Equal(t, itemValue1.Rate, itemValue2.Rate)
		assert.Equal(t, itemValue1.Stock, itemValue2.Stock)
		assert.True(t, itemValue1.CreatedAt.Equal(itemValue2.CreatedAt))
	})
}

func TestSerdeExclusionRuleV1(t *testing.T) {
	schemaIdentifier := new(MockSchemaIdentifier)
	subject := "catalogue_exclusions-value"

	schemaIdentifier.On(
		"DetermineID", t.Context(), subject, schema.ExclusionRuleSchemaTextV1,
	).Return(7, nil)

	serde, err := schema.NewSerdeExclusionRuleV1(
		t.Context(),
		schema.SubjectOpt(subject),
		schema.SchemaIdentifierOpt(schemaIdentifier),
	)
	require.NoError(t, err)

	rule := schema.ExclusionRuleV1{GroupKey: "harness red", Hidden: true}

	data, err := serde.Encode(rule)
	require.NoError(t, err)

	var decoded schema.ExclusionRuleV1
	require.NoError(t, serde.Decode(data, &decoded))
	assert.Equal(t, rule, decoded)
}
