package samplers

import (
	"context"

	"github.com/roach88/ledgerload/internal/flow"
	"github.com/roach88/ledgerload/internal/ir"
	"github.com/roach88/ledgerload/internal/sampler"
	"github.com/roach88/ledgerload/internal/scenario"
)

// IOUName is the test-plan name of the IOU sampler.
const IOUName = "IOU"

// IOU records an IOU owed to a counterparty. Its flow takes no notary
// argument, so it declares none and no notary is resolved.
type IOU struct{}

func (*IOU) Name() string { return IOUName }

func (*IOU) Parameters() scenario.Parameters {
	return scenario.NewParameters(
		scenario.Parameter{
			Name:        "otherPartyName",
			Description: "The X500 name of the payee.",
			Kind:        scenario.KindParty,
			Required:    true,
		},
		scenario.Parameter{
			Name:        "IouAmount",
			Default:     "50",
			Description: "How many USD do we owe?",
			Kind:        scenario.KindInt,
		},
	)
}

func (*IOU) Setup(_ context.Context, env *sampler.Env) (sampler.State, error) {
	amount, err := positiveAmount(env.Params, "IouAmount")
	if err != nil {
		return nil, err
	}
	counterparty, err := env.Party("otherPartyName")
	if err != nil {
		return nil, err
	}
	return &iouState{amount: ir.Int(amount), counterparty: counterparty.Value()}, nil
}

type iouState struct {
	amount       ir.Int
	counterparty ir.Object
}

func (s *iouState) Build() (flow.Invocation, error) {
	return flow.IOUIssue.Bind(s.amount, s.counterparty)
}
