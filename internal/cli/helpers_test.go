package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ledgerload/internal/devnode"
	"github.com/roach88/ledgerload/internal/store"
)

const (
	testNotary = "O=Notary,L=London,C=GB"
	testBankB  = "O=Bank B,L=New York,C=US"
)

// executeCommand runs the root command with args and returns stdout, stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// startNode serves a seeded development node and returns its RPC address.
func startNode(t *testing.T, cfg devnode.Config) string {
	t.Helper()
	network, err := devnode.Network([]string{testNotary}, []string{testBankB})
	require.NoError(t, err)
	st, err := store.Open(filepath.Join(t.TempDir(), "node.db"), store.WithNetwork(network))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	node := devnode.New(st, cfg)

	srv := httptest.NewServer(node.Handler())
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/rpc"
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
