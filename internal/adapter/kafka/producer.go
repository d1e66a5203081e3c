package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/salesops/internal/core/catalogue"
	"github.com/niksmo/salesops/internal/core/domain"
	"github.com/niksmo/salesops/internal/core/port"
	"github.com/niksmo/salesops/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	_ port.ItemsProducer     = (*ItemsProducer)(nil)
	_ port.ExclusionProducer = (*ExclusionRulesProducer)(nil)
)

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

func applyProducerOpts(op string, opts []ProducerOpt) (producerOpts, error) {
	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return producerOpts{}, opErr(err, op)
		}
	}
	return options, nil
}

// An ItemsProducer publishes accepted items to the ingestion stream.
//
// Records are keyed by the family group key, so every size of one
// family lands on the same partition as its exclusion rule.
type ItemsProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
}

func NewItemsProducer(opts ...ProducerOpt) (ItemsProducer, error) {
	const op = "NewItemsProducer"

	options, err := applyProducerOpts(op, opts)
	if err != nil {
		return ItemsProducer{}, err
	}

	opPrefix := "ItemsProducer"
	p := producer{
		opPrefix: opPrefix,
		cl:       options.cl,
	}

	return ItemsProducer{
		encoder:  options.encoder,
		producer: p,
		opPrefix: opPrefix,
	}, nil
}

func (p ItemsProducer) Close() {
	p.producer.close()
}

func (p ItemsProducer) ProduceItems(
	ctx context.Context, vs []domain.Product,
) error {
	const op = "ProduceItems"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	rs, err := p.createRecords(vs)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, rs...); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	return nil
}

func (p ItemsProducer) createRecords(
	vs []domain.Product,
) (rs []*kgo.Record, err error) {
	const op = "createRecords"

	for _, v := range vs {
		s := p.toSchema(v)
		b, err := p.encoder.Encode(s)
		if err != nil {
			return nil, opErr(err, p.opPrefix, op)
		}
		msgKey := []byte(catalogue.GroupKey(s.Name))
		r := &kgo.Record{Key: msgKey, Value: b}
		rs = append(rs, r)
	}

	return rs, nil
}

func (ItemsProducer) toSchema(v domain.Product) schema.ItemV1 {
	return productToItemV1(v)
}

// An ExclusionRulesProducer publishes family visibility changes.
type ExclusionRulesProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
}

func NewExclusionRulesProducer(
	opts ...ProducerOpt,
) (ExclusionRulesProducer, error) {
	const op = "NewExclusionRulesProducer"

	options, err := applyProducerOpts(op, opts)
	if err != nil {
		return ExclusionRulesProducer{}, err
	}

	opPrefix := "ExclusionRulesProducer"
	p := producer{
		opPrefix: opPrefix,
		cl:       options.cl,
	}

	return ExclusionRulesProducer{
		producer: p,
		encoder:  options.encoder,
		opPrefix: opPrefix,
	}, nil
}

func (p ExclusionRulesProducer) Close() {
	p.producer.close()
}

func (p ExclusionRulesProducer) ProduceExclusion(
	ctx context.Context, rule domain.ExclusionRule,
) error {
	const op = "ProduceExclusion"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r, err := p.createRecord(rule)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, r); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	return nil
}

func (p ExclusionRulesProducer) createRecord(
	v domain.ExclusionRule,
) (*kgo.Record, error) {
	const op = "createRecord"

	s := exclusionRuleToSchemaV1(v)
	b, err := p.encoder.Encode(s)
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}
	return &kgo.Record{Key: []byte(s.GroupKey), Value: b}, nil
}
