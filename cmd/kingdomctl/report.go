package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/usecase/dashboard"
)

// =============================================================================
// REPORT COMMAND
// =============================================================================

var reportFlags struct {
	out         string
	from, to    string
	venue       int64
	barber      int64
	client      int64
	service     int64
	noNarrative bool
	cover       string
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the performance PDF",
	Long:  `Loads the configured data source, applies the filters and writes the PDF report.`,
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVarP(&reportFlags.out, "out", "o", ".", "output file or directory")
	f.StringVar(&reportFlags.from, "from", "", "first day (YYYY-MM-DD)")
	f.StringVar(&reportFlags.to, "to", "", "last day (YYYY-MM-DD)")
	f.Int64Var(&reportFlags.venue, "venue", 0, "venue id")
	f.Int64Var(&reportFlags.barber, "barber", 0, "barber id")
	f.Int64Var(&reportFlags.client, "client", 0, "client id")
	f.Int64Var(&reportFlags.service, "service", 0, "service id")
	f.BoolVar(&reportFlags.noNarrative, "no-narrative", false, "skip the AI analysis section")
	f.StringVar(&reportFlags.cover, "cover", "", "prompt for a generated cover image")
}

func reportFilter() (view.Filter, error) {
	var f view.Filter
	for _, p := range []struct {
		v   int64
		dst **int64
	}{
		{reportFlags.venue, &f.VenueID},
		{reportFlags.barber, &f.BarberID},
		{reportFlags.client, &f.ClientID},
		{reportFlags.service, &f.ServiceID},
	} {
		if p.v != 0 {
			v := p.v
			*p.dst = &v
		}
	}
	for _, d := range []struct {
		raw string
		dst **time.Time
	}{
		{reportFlags.from, &f.From},
		{reportFlags.to, &f.To},
	} {
		if d.raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", d.raw)
		if err != nil {
			return view.Filter{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", d.raw)
		}
		*d.dst = &t
	}
	return f, nil
}

func runReport(cmd *cobra.Command, _ []string) error {
	f, err := reportFilter()
	if err != nil {
		return err
	}

	app, closeApp, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp()

	out, err := app.GenerateReport().Execute(cmd.Context(), "kingdomctl", dashboard.ReportInput{
		Filter:      f,
		Narrative:   !reportFlags.noNarrative,
		CoverPrompt: reportFlags.cover,
	})
	if err != nil {
		return err
	}

	path := reportFlags.out
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, out.Filename)
	}
	if err := os.WriteFile(path, out.PDF, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ %s (%d bytes, id %s)\n", path, len(out.PDF), out.ID)
	if out.Location != "" {
		fmt.Fprintf(w, "  archived at %s\n", out.Location)
	}
	for _, n := range out.Notices {
		fmt.Fprintf(w, "  ! %s\n", n)
	}
	return nil
}
