package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ledgerload/internal/flow"
	"github.com/roach88/ledgerload/internal/ir"
	"github.com/roach88/ledgerload/internal/rpc"
)

func TestFakeChannel_Network(t *testing.T) {
	notary := Party("O=Notary,L=London,C=GB")
	bankB := Party("O=Bank B,L=New York,C=US")
	ch := new(FakeChannel).Network([]ir.Party{notary}, bankB)
	ctx := context.Background()

	notaries, err := ch.NotaryIdentities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ir.Party{notary}, notaries)

	got, err := ch.WellKnownParty(ctx, bankB.Name)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, bankB, *got)

	missing, err := ch.WellKnownParty(ctx, "O=Nobody,L=Paris,C=FR")
	require.NoError(t, err)
	assert.Nil(t, missing)

	ch.AssertNumberOfCalls(t, "WellKnownParty", 2)
}

func TestFakeChannel_StartFlow(t *testing.T) {
	ch := new(FakeChannel)
	ch.On("StartFlow", mock.Anything, mock.MatchedBy(func(inv flow.Invocation) bool {
		return inv.Flow == flow.CashIssueFlow
	})).Return(&rpc.FlowResponse{ClientID: "c1"}, nil).Once()
	ch.On("StartFlow", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	resp, err := ch.StartFlow(context.Background(), flow.Invocation{Flow: flow.CashIssueFlow, ClientID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "c1", resp.ClientID)

	resp, err = ch.StartFlow(context.Background(), flow.Invocation{Flow: flow.IOUIssueFlow})
	assert.Nil(t, resp)
	assert.EqualError(t, err, "boom")

	started := ch.Started()
	require.Len(t, started, 2)
	assert.Equal(t, flow.CashIssueFlow, started[0].Flow)
	assert.Equal(t, flow.IOUIssueFlow, started[1].Flow)
}
