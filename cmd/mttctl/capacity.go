package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mtt/mttdash/internal/app/policy/capacitypolicy"
	dakwahstore "github.com/mtt/mttdash/internal/app/store/dakwah"
	sliderstore "github.com/mtt/mttdash/internal/app/store/sliders"
	"github.com/mtt/mttdash/internal/app/system/capacity"
	"github.com/mtt/mttdash/internal/app/system/metrics"
	"github.com/mtt/mttdash/internal/app/system/tasks"
	"github.com/mtt/mttdash/internal/app/system/visibility"
	"github.com/spf13/cobra"
)

func capacityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capacity",
		Short: "Inspect capacity-bounded content",
	}
	cmd.AddCommand(capacityReportCommand())
	return cmd
}

func capacityReportCommand() *cobra.Command {
	var sliderMax, dakwahMax int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Count active sliders and dakwah highlights against their limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), globalFlags.timeout)
			defer cancel()

			logger := newLogger()
			defer func() { _ = logger.Sync() }()

			db, disconnect, err := connect(ctx)
			if err != nil {
				return err
			}
			defer disconnect()

			m := metrics.New()
			guard := capacity.NewGuard(db, logger, m)
			reporters := []tasks.Reporter{
				visibility.NewSliders(sliderstore.New(db), guard, capacitypolicy.Sliders(sliderMax), m),
				visibility.NewHighlights(dakwahstore.New(db), guard, capacitypolicy.DakwahHighlights(dakwahMax), m),
			}

			var reports []visibility.Report
			for _, r := range reporters {
				rep, err := r.Report(ctx)
				if err != nil {
					return err
				}
				reports = append(reports, rep)
			}
			return printReports(cmd.OutOrStdout(), reports, asJSON)
		},
	}
	cmd.Flags().IntVar(&sliderMax, "slider-max", 5, "maximum visible home sliders")
	cmd.Flags().IntVar(&dakwahMax, "dakwah-max", 5, "maximum highlighted dakwah posts")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func printReports(w io.Writer, reports []visibility.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POLICY\tACTIVE\tTOTAL\tMIN\tMAX\tSTATUS")
	for _, r := range reports {
		status := "ok"
		if !r.WithinBounds() {
			status = "OUT OF BOUNDS"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n", r.Policy, r.Active, r.Total, r.Min, r.Max, status)
	}
	return tw.Flush()
}
