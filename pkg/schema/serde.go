package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

var (
	ErrTooFewOpts = errors.New("too few options")
)

// A Serde encodes values in the schema registry wire format: a magic
// byte, the schema id and the avro payload.
type Serde interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// SchemaIdentifier registers the schema text under the subject and
// returns its registry id.
type SchemaIdentifier interface {
	DetermineID(
		ctx context.Context, subject string, avroSchemaText string,
	) (id int, err error)
}

// A record pairs an avro schema text with the Go type it is decoded to.
type record struct {
	text    string
	example any
}

var (
	itemV1          = record{ItemSchemaTextV1, ItemV1{}}
	exclusionRuleV1 = record{ExclusionRuleSchemaTextV1, ExclusionRuleV1{}}
)

type Opt func(*serdeOpts) error

type serdeOpts struct {
	subject string
	si      SchemaIdentifier
}

func SubjectOpt(subject string) Opt {
	return func(so *serdeOpts) error {
		if subject == "" {
			return errors.New("subject is empty string")
		}
		so.subject = subject
		return nil
	}
}

func SchemaIdentifierOpt(si SchemaIdentifier) Opt {
	return func(so *serdeOpts) error {
		if si == nil {
			return errors.New("schema identifier is nil")
		}
		so.si = si
		return nil
	}
}

func (so *serdeOpts) apply(opts []Opt) error {
	for _, o := range opts {
		if err := o(so); err != nil {
			return err
		}
	}
	if so.subject == "" || so.si == nil {
		return ErrTooFewOpts
	}
	return nil
}

func NewSerdeItemV1(ctx context.Context, opts ...Opt) (Serde, error) {
	const op = "NewSerdeItemV1"
	s, err := newSerde(ctx, itemV1, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func NewSerdeExclusionRuleV1(ctx context.Context, opts ...Opt) (Serde, error) {
	const op = "NewSerdeExclusionRuleV1"
	s, err := newSerde(ctx, exclusionRuleV1, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func newSerde(ctx context.Context, r record, opts []Opt) (*sr.Serde, error) {
	var so serdeOpts
	if err := so.apply(opts); err != nil {
		return nil, err
	}

	avroSchema, err := avro.Parse(r.text)
	if err != nil {
		return nil, err
	}

	id, err := so.si.DetermineID(ctx, so.subject, r.text)
	if err != nil {
		return nil, err
	}

	s := new(sr.Serde)
	s.Register(
		id,
		r.example,
		sr.EncodeFn(AvroEncodeFn(avroSchema)),
		sr.DecodeFn(AvroDecodeFn(avroSchema)),
	)
	return s, nil
}
