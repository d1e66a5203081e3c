package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lovoo/goka"
	"github.com/niksmo/salesops/internal/core/port"
)

var _ port.ExclusionsView = (*ExclusionsView)(nil)

// An ExclusionsViewConfig used for setup [ExclusionsView].
//
// All fields are required.
type ExclusionsViewConfig struct {
	Client         ClientConfig
	ExclusionTable string
}

// An ExclusionsView is a local read-only copy of the exclusions
// group table.
type ExclusionsView struct {
	opPrefix string
	gv       *goka.View
}

func NewExclusionsView(
	config ExclusionsViewConfig, opts ...goka.ViewOption,
) (*ExclusionsView, error) {
	const op = "NewExclusionsView"

	applySASLTLS(config.Client)

	gv, err := goka.NewView(
		config.Client.SeedBrokers,
		goka.GroupTable(goka.Group(config.ExclusionTable)),
		hiddenValueCodec{},
		opts...,
	)
	if err != nil {
		return nil, opErr(err, op)
	}

	return &ExclusionsView{opPrefix: "ExclusionsView", gv: gv}, nil
}

func (v *ExclusionsView) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "Run"
	log := slog.With("op", makeOp(v.opPrefix, op))

	defer wg.Done()

	go func() {
		defer stopFn()
		if err := v.gv.Run(ctx); err != nil {
			log.Error("unexpected fail on run", "err", err)
			return
		}
		log.Info("stopped")
	}()

	log.Info("running")
}

// IsHidden reports false for families without a rule.
func (v *ExclusionsView) IsHidden(groupKey string) (bool, error) {
	const op = "IsHidden"

	value, err := v.gv.Get(groupKey)
	if err != nil {
		return false, opErr(err, v.opPrefix, op)
	}

	if value == nil {
		return false, nil
	}

	hv, ok := value.(hiddenValue)
	if !ok {
		return false, opErr(
			fmt.Errorf("%w: %T", ErrInvalidValueType, value), v.opPrefix, op,
		)
	}
	return bool(hv), nil
}
