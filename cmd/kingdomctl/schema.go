package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the column mapping",
}

var schemaCheckCmd = &cobra.Command{
	Use:   "check [mapping.yaml]",
	Short: "Validate a mapping file (the embedded one by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSchemaCheck,
}

func init() {
	schemaCmd.AddCommand(schemaCheckCmd)
}

func runSchemaCheck(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	m, err := schema.Load(path)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, e := range models.Entities {
		em := m.Entities[e]
		aliases := 0
		for _, a := range em.Columns {
			aliases += len(a)
		}
		required := append([]string(nil), em.Required...)
		sort.Strings(required)
		fmt.Fprintf(w, "✓ %-13s file=%s endpoints=%v aliases=%d required=%v\n",
			e, em.File, em.Endpoints, aliases, required)
	}
	return nil
}
