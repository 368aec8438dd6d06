// cmd/candidates_test.go
package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scanFixture = `<html><body>
	<button id="open">Open</button>
	<div id="panel">
		<input id="name">
		<div id="holder" tabindex="-1"></div>
	</div>
</body></html>`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(scanFixture), 0o644))
	return path
}

func runCandidates(t *testing.T, args ...string) []candidateReport {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"candidates"}, args...))
	require.NoError(t, rootCmd.Execute())

	var report []candidateReport
	require.NoError(t, jsoniter.Unmarshal(out.Bytes(), &report))
	return report
}

func TestCandidatesCommand(t *testing.T) {
	path := writeFixture(t)

	t.Run("scans the whole body", func(t *testing.T) {
		candidatesTarget = ""
		candidatesTabbable = false

		report := runCandidates(t, path)
		require.Len(t, report, 3)
		assert.Equal(t, candidateReport{Tag: "button", ID: "open", TabIndex: 0, Tabbable: true}, report[0])
		assert.Equal(t, candidateReport{Tag: "input", ID: "name", TabIndex: 0, Tabbable: true}, report[1])
		assert.Equal(t, candidateReport{Tag: "div", ID: "holder", TabIndex: -1, Tabbable: false}, report[2])
	})

	t.Run("scopes to a target selector", func(t *testing.T) {
		candidatesTarget = ""
		candidatesTabbable = false

		report := runCandidates(t, path, "--target", "#panel", "--tabbable")
		require.Len(t, report, 1)
		assert.Equal(t, "name", report[0].ID)
	})

	t.Run("unknown target selector fails", func(t *testing.T) {
		candidatesTarget = ""
		candidatesTabbable = false

		rootCmd.SetOut(new(bytes.Buffer))
		rootCmd.SetErr(new(bytes.Buffer))
		rootCmd.SetArgs([]string{"candidates", path, "--target", "#missing"})
		err := rootCmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "#missing")
	})

	t.Run("unreadable file fails", func(t *testing.T) {
		candidatesTarget = ""
		candidatesTabbable = false

		rootCmd.SetOut(new(bytes.Buffer))
		rootCmd.SetErr(new(bytes.Buffer))
		rootCmd.SetArgs([]string{"candidates", filepath.Join(t.TempDir(), "absent.html")})
		assert.Error(t, rootCmd.Execute())
	})
}
