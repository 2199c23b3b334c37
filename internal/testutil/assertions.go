package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertNodeRan checks the log output within a HarnessResult to confirm that a
// node has completed successfully.
func AssertNodeRan(t *testing.T, result *HarnessResult, nodeID string) {
	t.Helper()
	require.True(t, nodeLogged(result.LogOutput, nodeID, "Node finished."),
		"expected log output for node '%s' finishing was not found in logs", nodeID)
}

// AssertNodeNotRan checks that a node was never started.
func AssertNodeNotRan(t *testing.T, result *HarnessResult, nodeID string) {
	t.Helper()
	require.False(t, nodeLogged(result.LogOutput, nodeID, "Starting node."),
		"node '%s' was started but should not have been", nodeID)
}

func nodeLogged(logs, nodeID, msg string) bool {
	attr := fmt.Sprintf("node=%s ", nodeID)
	for _, line := range strings.Split(logs, "\n") {
		if strings.Contains(line, msg) && strings.Contains(line+" ", attr) {
			return true
		}
	}
	return false
}
