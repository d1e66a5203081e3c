package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/IBM/sarama"
	"github.com/lovoo/goka"
	"github.com/niksmo/salesops/internal/core/domain"
	"github.com/niksmo/salesops/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"
)

var (
	ErrTooFewOpts       = errors.New("too few options")
	ErrInvalidValueType = errors.New("invalid value type")
)

// A ClientConfig describes how to reach the brokers.
//
// TLSConfig and User are optional.
type ClientConfig struct {
	SeedBrokers []string
	TLSConfig   *tls.Config
	User        string
	Pass        string
}

func (c ClientConfig) kgoOpts(opts ...kgo.Opt) []kgo.Opt {
	base := []kgo.Opt{kgo.SeedBrokers(c.SeedBrokers...)}
	if c.TLSConfig != nil {
		base = append(base, kgo.DialTLSConfig(c.TLSConfig))
	}
	if c.User != "" {
		auth := plain.Auth{User: c.User, Pass: c.Pass}
		base = append(base, kgo.SASL(auth.AsMechanism()))
	}
	return append(base, opts...)
}

// applySASLTLS replaces the goka global sarama config.
// Must be called before creating processors and views.
func applySASLTLS(c ClientConfig) {
	cfg := goka.DefaultConfig()
	if c.TLSConfig != nil {
		cfg.Net.TLS.Enable = true
		cfg.Net.TLS.Config = c.TLSConfig
	}
	if c.User != "" {
		cfg.Net.SASL.Enable = true
		cfg.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		cfg.Net.SASL.User = c.User
		cfg.Net.SASL.Password = c.Pass
	}
	goka.ReplaceGlobalConfig(cfg)
}

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

func ProducerClientOpt(
	ctx context.Context, config ClientConfig, topic string,
) ProducerOpt {
	return func(opts *producerOpts) error {
		cl, err := kgo.NewClient(config.kgoOpts(
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.AllowAutoTopicCreation(),
		)...)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		return nil
	}
}

// ProducerWithClientOpt sets an already built client.
func ProducerWithClientOpt(cl ProducerClient) ProducerOpt {
	return func(opts *producerOpts) error {
		if cl == nil {
			return errors.New("producer client is nil")
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Decoder interface {
	Decode(b []byte, v any) error
}

type Serde interface {
	Encoder
	Decoder
}

func withNonlogProcOpt() goka.ProcessorOption {
	return goka.WithLogger(log.New(io.Discard, "", 0))
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func productToItemV1(v domain.Product) (s schema.ItemV1) {
	s.ItemID = v.ItemID
	s.Name = v.Name
	s.SKUCode = v.SKUCode
	s.ItemCode = v.ItemCode
	s.Brand = v.Brand
	s.Category = v.Category
	s.SubCategory = v.SubCategory
	s.Series = v.Series
	s.Rate = v.Rate
	s.Stock = v.Stock
	s.Status = v.Status
	s.Unit = v.Unit
	s.ImageURL = v.ImageURL
	s.CreatedAt = v.CreatedAt
	s.UpdatedAt = v.UpdatedAt
	return
}

func itemV1ToProduct(s schema.ItemV1) (v domain.Product) {
	v.ItemID = s.ItemID
	v.Name = s.Name
	v.SKUCode = s.SKUCode
	v.ItemCode = s.ItemCode
	v.Brand = s.Brand
	v.Category = s.Category
	v.SubCategory = s.SubCategory
	v.Series = s.Series
	v.Rate = s.Rate
	v.Stock = s.Stock
	v.Status = s.Status
	v.Unit = s.Unit
	v.ImageURL = s.ImageURL
	v.CreatedAt = s.CreatedAt
	v.UpdatedAt = s.UpdatedAt
	return
}

func exclusionRuleToSchemaV1(
	v domain.ExclusionRule,
) (s schema.ExclusionRuleV1) {
	s.GroupKey = v.GroupKey
	s.Hidden = v.Hidden
	return
}
