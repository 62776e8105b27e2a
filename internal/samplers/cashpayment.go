package samplers

import (
	"context"

	"github.com/roach88/ledgerload/internal/flow"
	"github.com/roach88/ledgerload/internal/ir"
	"github.com/roach88/ledgerload/internal/rpc"
	"github.com/roach88/ledgerload/internal/sampler"
	"github.com/roach88/ledgerload/internal/scenario"
)

// CashPaymentName is the test-plan name of the issue-and-pay sampler.
const CashPaymentName = "CashIssueAndPayment"

// paymentQuantity is the amount each sample issues and pays, in GBP.
const paymentQuantity = 2_000_000

// paymentFlows selects the flow by the useCoinSelection parameter. Both
// variants take the same five arguments.
var paymentFlows = flow.NewChoice("useCoinSelection", map[bool]flow.Template{
	true:  flow.CashIssueAndPayment,
	false: flow.CashIssueAndPaymentNoSelection,
})

// CashPayment issues cash and pays it to a counterparty in one flow.
type CashPayment struct{}

func (*CashPayment) Name() string { return CashPaymentName }

func (*CashPayment) Parameters() scenario.Parameters {
	return scenario.NewParameters(
		scenario.NotaryParameter,
		scenario.Parameter{
			Name:        "otherPartyName",
			Description: "The X500 name of the payee.",
			Kind:        scenario.KindParty,
			Required:    true,
		},
		scenario.Parameter{
			Name:        "useCoinSelection",
			Default:     "false",
			Description: "True to use coin selection, false to pay exactly the issued state.",
			Kind:        scenario.KindBool,
		},
		scenario.Parameter{
			Name:        "anonymousIdentities",
			Default:     "false",
			Description: "True to use anonymous identities, false to use well known identities.",
			Kind:        scenario.KindBool,
		},
	)
}

func (*CashPayment) Setup(_ context.Context, env *sampler.Env) (sampler.State, error) {
	coinSelection, err := env.Params.Bool("useCoinSelection")
	if err != nil {
		return nil, err
	}
	anonymous, err := env.Params.Bool("anonymousIdentities")
	if err != nil {
		return nil, err
	}
	tmpl, err := paymentFlows.Select(coinSelection)
	if err != nil {
		return nil, err
	}
	counterparty, err := env.Party("otherPartyName")
	if err != nil {
		return nil, err
	}
	notary, err := env.Party(scenario.NotaryParameter.Name)
	if err != nil {
		return nil, err
	}

	env.Logger.Debug("payment flow selected", "flow", tmpl.Flow, "anonymous", anonymous)
	return &cashPaymentState{
		tmpl:         tmpl,
		amount:       ir.Amount(paymentQuantity, "GBP"),
		ref:          ir.OpaqueBytes(issuerRef),
		counterparty: counterparty.Value(),
		anonymous:    ir.Bool(anonymous),
		notary:       notary.Value(),
	}, nil
}

type cashPaymentState struct {
	tmpl         flow.Template
	amount       ir.Object
	ref          ir.Object
	counterparty ir.Object
	anonymous    ir.Bool
	notary       ir.Object
}

func (s *cashPaymentState) Build() (flow.Invocation, error) {
	return s.tmpl.Bind(s.amount, s.ref, s.counterparty, s.anonymous, s.notary)
}

// Enrich copies the timings the node measured into the outcome.
func (s *cashPaymentState) Enrich(out *sampler.Outcome, resp *rpc.FlowResponse) {
	for k, v := range resp.Metrics {
		out.SetExtra("node."+k, v)
	}
}
