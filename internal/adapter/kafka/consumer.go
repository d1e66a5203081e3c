package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/niksmo/salesops/internal/core/domain"
	"github.com/niksmo/salesops/internal/core/port"
	"github.com/niksmo/salesops/pkg/retry"
	"github.com/niksmo/salesops/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

type ConsumerClient interface {
	PollFetches(context.Context) kgo.Fetches
	CommitUncommittedOffsets(context.Context) error
	Close()
}

////////////////////////////////////////////////////////
///////////////           OPTS            //////////////
////////////////////////////////////////////////////////

type ConsumerOpt func(*consumerOpts) error

func ConsumerClientOpt(
	config ClientConfig, topic, group string,
) ConsumerOpt {
	return func(co *consumerOpts) error {
		cl, err := kgo.NewClient(config.kgoOpts(
			kgo.ConsumeTopics(topic),
			kgo.ConsumerGroup(group),
			kgo.DisableAutoCommit(),
		)...)
		if err != nil {
			return err
		}
		co.cl = cl
		return nil
	}
}

// ConsumerWithClientOpt sets an already built client.
func ConsumerWithClientOpt(cl ConsumerClient) ConsumerOpt {
	return func(co *consumerOpts) error {
		if cl == nil {
			return errors.New("consumer client is nil")
		}
		co.cl = cl
		return nil
	}
}

func ConsumerDecoderOpt(decoder Decoder) ConsumerOpt {
	return func(co *consumerOpts) error {
		if decoder == nil {
			return errors.New("decoder is nil")
		}
		co.decoder = decoder
		return nil
	}
}

func ItemsConsumerSaverOpt(ps port.ProductsSaver) ConsumerOpt {
	return func(co *consumerOpts) error {
		if ps == nil {
			return errors.New("products saver is nil")
		}
		co.productsSaver = ps
		return nil
	}
}

type consumerOpts struct {
	cl            ConsumerClient
	decoder       Decoder
	productsSaver port.ProductsSaver
}

func (co *consumerOpts) apply(opts ...ConsumerOpt) error {
	for _, opt := range opts {
		if err := opt(co); err != nil {
			return err
		}
	}
	if co.cl == nil || co.decoder == nil || co.productsSaver == nil {
		return ErrTooFewOpts
	}
	return nil
}

// A consumer polls records, hands them to the parent and commits
// offsets once the parent succeeded. Consecutive failures slow the
// polling down exponentially.
type consumer struct {
	opPrefix string
	parent   consumerParent
	cl       ConsumerClient
	backoff  retry.Backoff
	maxDelay time.Duration
}

type consumerParent interface {
	processFetches(context.Context, kgo.Fetches) error
}

func newConsumer(
	opPrefix string, parent consumerParent, cl ConsumerClient,
) consumer {
	return consumer{
		opPrefix: opPrefix,
		parent:   parent,
		cl:       cl,
		backoff:  retry.ExponentialBackoff(100 * time.Millisecond),
		maxDelay: 5 * time.Second,
	}
}

func (c consumer) run(ctx context.Context) {
	const op = "run"
	log := slog.With("op", makeOp(c.opPrefix, op))

	log.Info("running")
	defer log.Info("stopped")

	var failures int
	for ctx.Err() == nil {
		err := c.consume(ctx)
		if err == nil {
			failures = 0
			continue
		}
		if ctx.Err() != nil {
			return
		}

		failures++
		log.Error("failed to consume", "failures", failures, "err", err)
		c.wait(ctx, failures)
	}
}

func (c consumer) wait(ctx context.Context, failures int) {
	d := min(c.backoff(failures), c.maxDelay)
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (c consumer) consume(ctx context.Context) error {
	const op = "consume"

	fetches, err := c.pollFetches(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	if fetches.Empty() {
		return nil
	}

	if err := c.parent.processFetches(ctx, fetches); err != nil {
		return opErr(err, c.opPrefix, op)
	}

	if err := c.cl.CommitUncommittedOffsets(ctx); err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c consumer) pollFetches(ctx context.Context) (kgo.Fetches, error) {
	fetches := c.cl.PollFetches(ctx)
	if err := fetches.Err0(); err != nil {
		return nil, err
	}
	if err := fetchErrors(fetches); err != nil {
		return nil, err
	}
	return fetches, nil
}

// fetchErrors joins partition errors into one.
func fetchErrors(fetches kgo.Fetches) error {
	var msgs []string
	fetches.EachError(func(topic string, partition int32, err error) {
		msgs = append(msgs, fmt.Sprintf(
			"topic %q partition %d: %v", topic, partition, err,
		))
	})
	if len(msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(msgs, "; "))
}

func (c consumer) close() {
	const op = "close"
	log := slog.With("op", makeOp(c.opPrefix, op))

	log.Info("closing consumer...")
	c.cl.Close()
	log.Info("consumer is closed")
}

// An ItemsConsumer reads the items that passed the exclusion gate and
// saves them through the core service. A batch is committed only after
// it is saved.
type ItemsConsumer struct {
	opPrefix   string
	consumer   consumer
	saver      port.ProductsSaver
	decoder    Decoder
	savePolicy retry.Policy
}

func NewItemsConsumer(opts ...ConsumerOpt) (ItemsConsumer, error) {
	const op = "NewItemsConsumer"

	var options consumerOpts
	if err := options.apply(opts...); err != nil {
		return ItemsConsumer{}, opErr(err, op)
	}

	ic := ItemsConsumer{
		opPrefix: "ItemsConsumer",
		saver:    options.productsSaver,
		decoder:  options.decoder,
		savePolicy: retry.Policy{
			MaxAttempts: 3,
			Backoff:     retry.ExponentialBackoff(50 * time.Millisecond),
			ShouldRetry: isTransient,
		},
	}
	ic.consumer = newConsumer(ic.opPrefix, ic, options.cl)
	return ic, nil
}

func (c ItemsConsumer) Run(ctx context.Context) {
	c.consumer.run(ctx)
}

func (c ItemsConsumer) Close() {
	c.consumer.close()
}

func (c ItemsConsumer) processFetches(
	ctx context.Context, fetches kgo.Fetches,
) error {
	const op = "processFetches"
	log := slog.With("op", makeOp(c.opPrefix, op))

	ps := c.toDomain(fetches)
	if len(ps) == 0 {
		return nil
	}

	policy := c.savePolicy
	policy.OnRetry = func(attempt int, err error) {
		log.Warn("failed to save products, retrying",
			"attempt", attempt, "nProducts", len(ps), "err", err,
		)
	}

	err := retry.Do(ctx, policy, func() error {
		return c.saver.SaveProducts(ctx, ps)
	})
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	log.Debug("products saved", "nProducts", len(ps))
	return nil
}

// toDomain skips undecodable records. Within one batch the last record
// of an item wins.
func (c ItemsConsumer) toDomain(fetches kgo.Fetches) []domain.Product {
	const op = "toDomain"
	log := slog.With("op", makeOp(c.opPrefix, op))

	var ps []domain.Product
	pos := make(map[string]int)
	fetches.EachRecord(func(r *kgo.Record) {
		var s schema.ItemV1
		if err := c.decoder.Decode(r.Value, &s); err != nil {
			log.Error("failed to decode item",
				"topic", r.Topic,
				"partition", r.Partition,
				"offset", r.Offset,
				"err", err,
			)
			return
		}

		p := itemV1ToProduct(s)
		if i, ok := pos[p.ItemID]; ok {
			ps[i] = p
			return
		}
		pos[p.ItemID] = len(ps)
		ps = append(ps, p)
	})
	return ps
}

func isTransient(err error) bool {
	return !errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded) &&
		!errors.Is(err, domain.ErrInvalidItem)
}
