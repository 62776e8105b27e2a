package flow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ledgerload/internal/ir"
	"github.com/roach88/ledgerload/internal/scenario"
)

var notary = ir.Party{Name: "O=Notary,L=London,C=GB", OwningKey: "key-n"}

func TestBind_CashIssue(t *testing.T) {
	inv, err := CashIssue.Bind(ir.Amount(100000, "USD"), ir.OpaqueBytes([]byte{1}), notary.Value())
	require.NoError(t, err)

	assert.Equal(t, CashIssueFlow, inv.Flow)
	require.Len(t, inv.Args, 3)
	q, tok, err := ir.AsAmount(inv.Args[0])
	require.NoError(t, err)
	assert.Equal(t, int64(100000), q)
	assert.Equal(t, "USD", tok)
	assert.Empty(t, inv.ClientID)
}

func TestBind_ArityMismatch(t *testing.T) {
	_, err := CashIssue.Bind(ir.Amount(1, "USD"), notary.Value())
	require.Error(t, err)

	var se *SignatureError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, -1, se.Index)
	assert.True(t, scenario.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "expected 3 arguments, got 2")
}

func TestBind_TypeMismatch(t *testing.T) {
	_, err := IOUIssue.Bind(ir.String("50"), notary.Value())
	require.Error(t, err)

	var se *SignatureError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 0, se.Index)
	assert.Equal(t, ir.TypeInt, se.Want)
	assert.Equal(t, ir.TypeString, se.Got)
	assert.True(t, scenario.IsConfigurationError(err))
}

func TestBind_CopiesArgs(t *testing.T) {
	args := []ir.Value{ir.Int(50), notary.Value()}
	inv, err := IOUIssue.Bind(args...)
	require.NoError(t, err)

	args[0] = ir.Int(99)
	assert.Equal(t, ir.Int(50), inv.Args[0])
}

func TestWithClientID(t *testing.T) {
	inv, err := IOUIssue.Bind(ir.Int(50), notary.Value())
	require.NoError(t, err)

	a, err := inv.WithClientID("run-1", 1)
	require.NoError(t, err)
	b, err := inv.WithClientID("run-1", 1)
	require.NoError(t, err)
	c, err := inv.WithClientID("run-1", 2)
	require.NoError(t, err)

	assert.Len(t, a.ClientID, 64)
	assert.Equal(t, a.ClientID, b.ClientID)
	assert.NotEqual(t, a.ClientID, c.ClientID)
	assert.Empty(t, inv.ClientID, "receiver is not modified")
}

func TestSignature(t *testing.T) {
	assert.Equal(t,
		"com.example.flow.ExampleFlow$Initiator(iouValue Int, otherParty Party)",
		IOUIssue.Signature())
}

func TestChoice_Select(t *testing.T) {
	c := NewChoice("useCoinSelection", map[bool]Template{
		true:  CashIssueAndPayment,
		false: CashIssueAndPaymentNoSelection,
	})

	on, err := c.Select(true)
	require.NoError(t, err)
	off, err := c.Select(false)
	require.NoError(t, err)

	assert.Equal(t, CashIssueAndPaymentFlow, on.Flow)
	assert.Equal(t, CashIssueAndPaymentNoSelectionFlow, off.Flow)
	assert.Len(t, on.Params, 5)
	assert.Len(t, off.Params, 5)
}

func TestChoice_UnknownKey(t *testing.T) {
	c := NewChoice("mode", map[string]Template{"issue": CashIssue})

	_, err := c.Select("pay")
	require.Error(t, err)
	assert.True(t, scenario.IsConfigurationError(err))
	assert.Contains(t, err.Error(), `parameter "mode" = "pay"`)
}

func TestCatalog(t *testing.T) {
	all := Catalog()
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Flow, all[i].Flow)
	}

	tmpl, ok := Lookup(CashIssueFlow)
	require.True(t, ok)
	assert.Equal(t, CashIssue.Params, tmpl.Params)

	_, ok = Lookup("com.example.Missing")
	assert.False(t, ok)
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("run-1", "run-2")
	assert.Equal(t, "run-1", g.Generate())
	assert.Equal(t, "run-2", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestUUIDv7Generator(t *testing.T) {
	var g UUIDv7Generator
	a, b := g.Generate(), g.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
