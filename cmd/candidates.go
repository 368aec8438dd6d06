// File: cmd/candidates.go
package cmd

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/keyfence/internal/observability"
	"github.com/xkilldash9x/keyfence/pkg/dom"
	"github.com/xkilldash9x/keyfence/pkg/focus"
)

var (
	candidatesTarget   string
	candidatesTabbable bool
)

// candidateReport is one row of the scan output.
type candidateReport struct {
	Tag      string `json:"tag"`
	ID       string `json:"id,omitempty"`
	TabIndex int    `json:"tab_index"`
	Tabbable bool   `json:"tabbable"`
}

var candidatesCmd = &cobra.Command{
	Use:   "candidates <file>",
	Short: "Scan an HTML file and report its focus candidates as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.GetLogger().Named("candidates")

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening document: %w", err)
		}
		defer f.Close()

		doc, err := dom.Parse(f)
		if err != nil {
			return fmt.Errorf("parsing document: %w", err)
		}

		container := doc.Body()
		if candidatesTarget != "" {
			container = doc.QuerySelector(candidatesTarget)
			if container == nil {
				return fmt.Errorf("no element matches target selector %q", candidatesTarget)
			}
		}

		filter := focus.IsFocusable
		if candidatesTabbable {
			filter = focus.IsTabbable
		}

		found := focus.Candidates(container, filter)
		logger.Debug("scan complete",
			zap.String("container", container.String()),
			zap.Int("candidates", len(found)))

		report := make([]candidateReport, 0, len(found))
		for _, el := range found {
			report = append(report, candidateReport{
				Tag:      el.TagName(),
				ID:       el.ID(),
				TabIndex: focus.TabIndex(el),
				Tabbable: focus.IsTabbable(el),
			})
		}

		out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	candidatesCmd.Flags().StringVarP(&candidatesTarget, "target", "t", "", "CSS selector for the container to scan (default: body)")
	candidatesCmd.Flags().BoolVar(&candidatesTabbable, "tabbable", false, "report only keyboard-reachable candidates")
	rootCmd.AddCommand(candidatesCmd)
}
