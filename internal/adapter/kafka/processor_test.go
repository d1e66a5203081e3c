package kafka

import (
	"context"
	"testing"

	"github.com/lovoo/goka"
	"github.com/lovoo/goka/tester"
	"github.com/niksmo/salesops/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testExclusionsTopic = "catalogue_exclusions"
	testExclusionsTable = "catalogue-exclusions-table"
	testItemsInput      = "items_from_books"
	testItemsOutput     = "items_to_storage"
)

func runGoka(t *testing.T, gp *goka.Processor) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = gp.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestExclusionRulesProcessor(t *testing.T) {
	gkt := tester.New(t)

	p, err := NewExclusionRulesProc(
		ClientConfig{},
		testExclusionsTopic,
		testExclusionsTable,
		avroSerde{schema.ExclusionRuleV1Avro()},
		goka.WithTester(gkt),
	)
	require.NoError(t, err)
	runGoka(t, p.proc.gp)

	table := goka.GroupTable(goka.Group(testExclusionsTable))

	gkt.Consume(testExclusionsTopic, "harness red",
		schema.ExclusionRuleV1{GroupKey: "harness red", Hidden: true},
	)
	assert.Equal(t, hiddenValue(true), gkt.TableValue(table, "harness red"))

	gkt.Consume(testExclusionsTopic, "harness red",
		schema.ExclusionRuleV1{GroupKey: "harness red", Hidden: false},
	)
	assert.Nil(t, gkt.TableValue(table, "harness red"))
}

func TestItemGateProcessor(t *testing.T) {
	gkt := tester.New(t)

	p, err := NewItemGateProc(ItemGateConfig{
		Group:          "items-gate-group",
		InputStream:    testItemsInput,
		ExclusionTable: testExclusionsTable,
		OutputStream:   testItemsOutput,
		ItemSerde:      avroSerde{schema.ItemV1Avro()},
	}, goka.WithTester(gkt))
	require.NoError(t, err)
	runGoka(t, p.proc.gp)

	out := gkt.NewQueueTracker(testItemsOutput)

	gkt.SetTableValue(
		goka.GroupTable(goka.Group(testExclusionsTable)),
		"harness red",
		hiddenValue(true),
	)

	hidden := productToItemV1(testProduct("1", "Harness Red (XL)"))
	visible := productToItemV1(testProduct("2", "Rope Toy"))

	gkt.Consume(testItemsInput, "harness red", hidden)
	gkt.Consume(testItemsInput, "rope toy", visible)

	key, value, ok := out.Next()
	require.True(t, ok)
	assert.Equal(t, "rope toy", key)

	item, isItem := value.(schema.ItemV1)
	require.True(t, isItem)
	assert.Equal(t, "2", item.ItemID)

	_, _, ok = out.Next()
	assert.False(t, ok)
}
