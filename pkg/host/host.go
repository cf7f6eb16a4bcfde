package host

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"mercator-hq/gatekeep/pkg/rules/ast"
	"mercator-hq/gatekeep/pkg/rules/engine"
	"mercator-hq/gatekeep/pkg/rules/record"
	"mercator-hq/gatekeep/pkg/telemetry/logging"
)

// BuildRecord flattens the cart into a record. Unparsable amounts become
// zero, negative line quantities count as zero and the address comes from
// the first delivery group.
func BuildRecord(in *Input) *record.Record {
	cart := &in.Cart
	rec := &record.Record{
		Total:    parseAmount(cart.Cost.TotalAmount.Amount),
		Subtotal: parseAmount(cart.Cost.SubtotalAmount.Amount),
	}

	for _, line := range cart.Lines {
		if line.Quantity > 0 {
			rec.Quantity += uint32(line.Quantity)
		}
	}

	if cart.TotalWeight != nil {
		rec.TotalWeight = *cart.TotalWeight
	}

	if cart.BuyerIdentity != nil && cart.BuyerIdentity.Customer != nil {
		rec.CustomerTags = cart.BuyerIdentity.Customer.Tags
	}

	if len(cart.DeliveryGroups) > 0 && cart.DeliveryGroups[0].DeliveryAddress != nil {
		da := cart.DeliveryGroups[0].DeliveryAddress
		rec.ShippingAddress = record.Address{
			Address1:     deref(da.Address1),
			Address2:     deref(da.Address2),
			City:         deref(da.City),
			Province:     deref(da.Province),
			ProvinceCode: deref(da.ProvinceCode),
			Country:      deref(da.Country),
			CountryCode:  deref(da.CountryCode),
			Zip:          deref(da.Zip),
		}
	}

	return rec
}

func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Processor runs host invocations.
type Processor struct {
	evaluator *engine.Evaluator
	logger    *logging.Logger
}

// NewProcessor creates a processor.
func NewProcessor(evaluator *engine.Evaluator, logger *logging.Logger) (*Processor, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator cannot be nil")
	}
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{Level: "info", Format: "json"})
		if err != nil {
			return nil, err
		}
	}
	return &Processor{evaluator: evaluator, logger: logger}, nil
}

// Process evaluates the metafield rules against the cart. It never fails;
// configuration problems yield an empty Output.
func (p *Processor) Process(ctx context.Context, in *Input) Output {
	out := Output{Errors: []FunctionError{}}

	if in.Shop.Metafield == nil {
		p.logger.WarnContext(ctx, "no rules config found in metafield")
		return out
	}

	cfg, err := ast.ParseJSON([]byte(in.Shop.Metafield.Value))
	if err != nil {
		p.logger.WarnContext(ctx, "failed to parse rules config", "error", err)
		return out
	}
	ctx = logging.WithRulesVersion(ctx, cfg.Version)

	if len(cfg.Rules) == 0 {
		p.logger.InfoContext(ctx, "no rules configured")
		return out
	}

	result := p.evaluator.EvaluateRules(cfg, BuildRecord(in))

	p.logger.InfoContext(ctx, "rules evaluated",
		"rules_evaluated", result.RulesEvaluated,
		"errors", len(result.Errors),
		"elapsed_us", result.Elapsed.Microseconds(),
	)

	for _, e := range result.Errors {
		out.Errors = append(out.Errors, FunctionError{
			LocalizedMessage: e.Message,
			Target:           TargetCart,
		})
	}
	return out
}

// Run decodes one Input from r, processes it and encodes the Output to w.
// Malformed input is an error.
func (p *Processor) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	ctx = logging.WithInvocationID(ctx, uuid.New().String())

	var in Input
	if err := sonic.ConfigDefault.NewDecoder(r).Decode(&in); err != nil {
		p.logger.ErrorContext(ctx, "failed to decode input", "error", err)
		return fmt.Errorf("failed to decode input: %w", err)
	}

	out := p.Process(ctx, &in)

	if err := sonic.ConfigDefault.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
