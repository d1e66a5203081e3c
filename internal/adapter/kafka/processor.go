package kafka

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/lovoo/goka"
	"github.com/niksmo/salesops/internal/core/port"
	"github.com/niksmo/salesops/pkg/schema"
)

var (
	_ port.ExclusionRulesProcessor = (*ExclusionRulesProcessor)(nil)
	_ port.ItemGateProcessor       = (*ItemGateProcessor)(nil)
)

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

func (p *processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
		return
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// An exclusionRuleCodec used for serde [schema.ExclusionRuleV1]
type exclusionRuleCodec struct {
	serde Serde
}

func newExclusionRuleCodec(s Serde) exclusionRuleCodec {
	return exclusionRuleCodec{s}
}

func (c exclusionRuleCodec) Encode(v any) ([]byte, error) {
	const op = "exclusionRuleCodec.Encode"
	if _, ok := v.(schema.ExclusionRuleV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c exclusionRuleCodec) Decode(data []byte) (any, error) {
	const op = "exclusionRuleCodec.Decode"
	var s schema.ExclusionRuleV1
	err := c.serde.Decode(data, &s)
	if err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A hiddenValue tells whether a product family is excluded from the catalogue.
type hiddenValue bool

// A hiddenValueCodec used for serde [hiddenValue]
type hiddenValueCodec struct{}

func (hiddenValueCodec) Encode(v any) ([]byte, error) {
	const op = "hiddenValueCodec.Encode"
	hv, ok := v.(hiddenValue)
	if !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	data := strconv.AppendBool([]byte(nil), bool(hv))
	return data, nil
}

func (hiddenValueCodec) Decode(data []byte) (any, error) {
	const op = "hiddenValueCodec.Decode"
	hv, err := strconv.ParseBool(string(data))
	if err != nil {
		return nil, opErr(err, op)
	}
	return hiddenValue(hv), nil
}

// An ExclusionRulesProcessor keeps the latest exclusion rule of every
// product family in a group table.
type ExclusionRulesProcessor struct {
	opPrefix string
	proc     processor
}

func NewExclusionRulesProc(
	config ClientConfig,
	inputStream string,
	groupTable string,
	ruleSerde Serde,
	opts ...goka.ProcessorOption,
) (*ExclusionRulesProcessor, error) {
	const op = "NewExclusionRulesProc"

	applySASLTLS(config)

	p := &ExclusionRulesProcessor{opPrefix: "ExclusionRulesProcessor"}

	gg := goka.DefineGroup(goka.Group(groupTable),
		goka.Input(
			goka.Stream(inputStream),
			newExclusionRuleCodec(ruleSerde),
			p.processFn,
		),
		goka.Persist(hiddenValueCodec{}),
	)

	opts = append([]goka.ProcessorOption{withNonlogProcOpt()}, opts...)
	gp, err := goka.NewProcessor(config.SeedBrokers, gg, opts...)
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{
		opPrefix: p.opPrefix,
		gp:       gp,
	}

	return p, nil
}

func (p *ExclusionRulesProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *ExclusionRulesProcessor) Close() {
	p.proc.close()
}

// processFn drops the table entry when a family is revealed again.
func (p *ExclusionRulesProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"
	log := slog.With("op", makeOp(p.opPrefix, op), "groupKey", ctx.Key())

	rule, _ := msg.(schema.ExclusionRuleV1)
	if !rule.Hidden {
		ctx.Delete()
		log.Info("family revealed")
		return
	}
	ctx.SetValue(hiddenValue(true))
	log.Info("family hidden")
}
