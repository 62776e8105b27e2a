package samplers

import (
	"context"

	"github.com/roach88/ledgerload/internal/flow"
	"github.com/roach88/ledgerload/internal/ir"
	"github.com/roach88/ledgerload/internal/sampler"
	"github.com/roach88/ledgerload/internal/scenario"
)

// CashIssueName is the test-plan name of the cash issue sampler.
const CashIssueName = "CashIssue"

// issuerRef is the issuer reference attached to all issued cash.
var issuerRef = []byte{0x01}

// CashIssue issues cash to the node it is connected to, notarised by the
// configured notary.
type CashIssue struct{}

func (*CashIssue) Name() string { return CashIssueName }

func (*CashIssue) Parameters() scenario.Parameters {
	return scenario.NewParameters(
		scenario.NotaryParameter,
		scenario.Parameter{
			Name:        "amount",
			Default:     "100000",
			Description: "Quantity of cash to issue per sample, in whole currency units.",
			Kind:        scenario.KindInt,
		},
		scenario.Parameter{
			Name:        "currency",
			Default:     "USD",
			Description: "ISO 4217 code of the currency to issue.",
			Kind:        scenario.KindCurrency,
		},
	)
}

func (*CashIssue) Setup(_ context.Context, env *sampler.Env) (sampler.State, error) {
	amount, err := positiveAmount(env.Params, "amount")
	if err != nil {
		return nil, err
	}
	currency, err := env.Params.Currency("currency")
	if err != nil {
		return nil, err
	}
	notary, err := env.Party(scenario.NotaryParameter.Name)
	if err != nil {
		return nil, err
	}

	return &cashIssueState{
		amount: ir.Amount(amount, currency),
		ref:    ir.OpaqueBytes(issuerRef),
		notary: notary.Value(),
	}, nil
}

type cashIssueState struct {
	amount ir.Object
	ref    ir.Object
	notary ir.Object
}

func (s *cashIssueState) Build() (flow.Invocation, error) {
	return flow.CashIssue.Bind(s.amount, s.ref, s.notary)
}

func positiveAmount(params *scenario.Values, name string) (int64, error) {
	n, err := params.Int(name)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		raw, _ := params.Raw(name)
		return 0, &scenario.ConfigurationError{Parameter: name, Value: raw, Reason: "must be positive"}
	}
	return n, nil
}
