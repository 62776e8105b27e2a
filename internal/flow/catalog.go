package flow

import (
	"cmp"
	"slices"

	"github.com/roach88/ledgerload/internal/ir"
)

// Flow identifiers.
const (
	CashIssueFlow                      = "net.corda.finance.flows.CashIssueFlow"
	CashIssueAndPaymentFlow            = "com.r3.corda.enterprise.perftestcordapp.flows.CashIssueAndPaymentFlow"
	CashIssueAndPaymentNoSelectionFlow = "com.r3.corda.enterprise.perftestcordapp.flows.CashIssueAndPaymentNoSelection"
	IOUIssueFlow                       = "com.example.flow.ExampleFlow$Initiator"
)

var (
	// CashIssue issues cash to the calling node.
	CashIssue = Template{
		Flow: CashIssueFlow,
		Params: []Arg{
			{Name: "amount", Type: ir.TypeAmount},
			{Name: "issuerBankPartyRef", Type: ir.TypeOpaqueBytes},
			{Name: "notary", Type: ir.TypeParty},
		},
	}

	// CashIssueAndPayment issues cash and pays it to a recipient using coin
	// selection.
	CashIssueAndPayment = Template{
		Flow:   CashIssueAndPaymentFlow,
		Params: issueAndPayParams(),
	}

	// CashIssueAndPaymentNoSelection issues cash and pays exactly the issued
	// state to a recipient.
	CashIssueAndPaymentNoSelection = Template{
		Flow:   CashIssueAndPaymentNoSelectionFlow,
		Params: issueAndPayParams(),
	}

	// IOUIssue records an IOU owed to a counterparty.
	IOUIssue = Template{
		Flow: IOUIssueFlow,
		Params: []Arg{
			{Name: "iouValue", Type: ir.TypeInt},
			{Name: "otherParty", Type: ir.TypeParty},
		},
	}
)

func issueAndPayParams() []Arg {
	return []Arg{
		{Name: "amount", Type: ir.TypeAmount},
		{Name: "issueRef", Type: ir.TypeOpaqueBytes},
		{Name: "recipient", Type: ir.TypeParty},
		{Name: "anonymous", Type: ir.TypeBool},
		{Name: "notary", Type: ir.TypeParty},
	}
}

var catalog = map[string]Template{
	CashIssueFlow:                      CashIssue,
	CashIssueAndPaymentFlow:            CashIssueAndPayment,
	CashIssueAndPaymentNoSelectionFlow: CashIssueAndPaymentNoSelection,
	IOUIssueFlow:                       IOUIssue,
}

// Lookup returns the catalog template for a flow identifier.
func Lookup(flow string) (Template, bool) {
	t, ok := catalog[flow]
	return t, ok
}

// Catalog returns every known template, sorted by flow identifier.
func Catalog() []Template {
	out := make([]Template, 0, len(catalog))
	for _, t := range catalog {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b Template) int {
		return cmp.Compare(a.Flow, b.Flow)
	})
	return out
}
