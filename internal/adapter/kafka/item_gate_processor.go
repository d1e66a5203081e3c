package kafka

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lovoo/goka"
	"github.com/niksmo/salesops/pkg/schema"
)

// An itemCodec used for serde [schema.ItemV1]
type itemCodec struct {
	serde Serde
}

func newItemCodec(s Serde) itemCodec {
	return itemCodec{s}
}

func (c itemCodec) Encode(v any) ([]byte, error) {
	const op = "itemCodec.Encode"
	if _, ok := v.(schema.ItemV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c itemCodec) Decode(data []byte) (any, error) {
	const op = "itemCodec.Decode"
	var s schema.ItemV1
	err := c.serde.Decode(data, &s)
	if err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// An ItemGateProcessor processes items from the input stream,
// looks the family up in the exclusions table and sends
// visible items to the output topic.
type ItemGateProcessor struct {
	opPrefix     string
	proc         processor
	joinedTable  goka.Table
	outputStream goka.Stream
}

// An ItemGateConfig used for setup [ItemGateProcessor].
//
// All fields are required.
type ItemGateConfig struct {
	Client         ClientConfig
	Group          string
	InputStream    string
	ExclusionTable string
	OutputStream   string
	ItemSerde      Serde
}

func NewItemGateProc(
	config ItemGateConfig, opts ...goka.ProcessorOption,
) (*ItemGateProcessor, error) {
	const op = "NewItemGateProc"

	applySASLTLS(config.Client)

	p := &ItemGateProcessor{opPrefix: "ItemGateProcessor"}

	codec := newItemCodec(config.ItemSerde)
	inputStream := goka.Stream(config.InputStream)
	joinedTable := goka.GroupTable(goka.Group(config.ExclusionTable))
	outputStream := goka.Stream(config.OutputStream)

	gg := goka.DefineGroup(goka.Group(config.Group),
		goka.Input(inputStream, codec, p.processFn),
		goka.Join(joinedTable, hiddenValueCodec{}),
		goka.Output(outputStream, codec),
	)

	opts = append([]goka.ProcessorOption{withNonlogProcOpt()}, opts...)
	gp, err := goka.NewProcessor(config.Client.SeedBrokers, gg, opts...)
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{
		opPrefix: p.opPrefix,
		gp:       gp,
	}
	p.joinedTable = joinedTable
	p.outputStream = outputStream
	return p, nil
}

func (p *ItemGateProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *ItemGateProcessor) Close() {
	p.proc.close()
}

func (p *ItemGateProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"

	item, _ := msg.(schema.ItemV1)
	log := slog.With(
		"op", makeOp(p.opPrefix, op),
		"itemID", item.ItemID,
		"groupKey", ctx.Key(),
	)

	v, ok := ctx.Join(p.joinedTable).(hiddenValue)
	if ok && bool(v) {
		log.Info("item family is hidden")
		return
	}
	ctx.Emit(p.outputStream, ctx.Key(), item)
	log.Debug("item passed")
}
