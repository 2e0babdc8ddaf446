package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/diagnostics"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Check the generative API and every data source",
	Args:  cobra.NoArgs,
	RunE:  runDiagnose,
}

func runDiagnose(cmd *cobra.Command, _ []string) error {
	app, closeApp, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp()

	checks := app.Diagnostics.Run(cmd.Context())
	w := cmd.OutOrStdout()
	for _, c := range checks {
		mark := "✓"
		if !c.OK {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %-28s %s\n", mark, c.Name, c.Detail)
	}

	if !diagnostics.Healthy(checks) {
		return fmt.Errorf("%d check(s) failed", failed(checks))
	}
	return nil
}

func failed(checks []diagnostics.Check) int {
	n := 0
	for _, c := range checks {
		if !c.OK {
			n++
		}
	}
	return n
}
