package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "kpictl",
		Short:         "Offline KPI reports over synthetic or CSV monthly records",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	opts.bindSource(rootCmd)

	rootCmd.AddCommand(summaryCmd(opts))
	rootCmd.AddCommand(compareCmd(opts))
	rootCmd.AddCommand(trendCmd(opts))
	rootCmd.AddCommand(groupsCmd(opts))
	rootCmd.AddCommand(exportCmd(opts))
	return rootCmd
}

func summaryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Aggregate KPIs for one month and dimension filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummary(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	opts.bindQuery(cmd)
	cmd.Flags().StringVar(&opts.measures, "measure", "", "comma separated measures to list, e.g. revenue.total,consumption.soldKwh")
	return cmd
}

func compareCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare current period with previous period and same period last year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompare(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	opts.bindQuery(cmd)
	cmd.Flags().StringVar(&opts.granularity, "granularity", "monthly", "monthly | quarterly")
	return cmd
}

func trendCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Rolling monthly trend ending at the reference month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrend(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	opts.bindQuery(cmd)
	cmd.Flags().IntVar(&opts.window, "window", 0, "number of months (default 12)")
	return cmd
}

func groupsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Group the filtered month by one or more dimensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGroups(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	opts.bindQuery(cmd)
	cmd.Flags().StringVar(&opts.groupBy, "group-by", "zone", "comma separated dimensions, e.g. zone,site")
	cmd.Flags().StringVar(&opts.order, "order", "", "first_seen | lexical")
	return cmd
}

func exportCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered records as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	opts.bindQuery(cmd)
	cmd.Flags().StringVar(&opts.granularity, "granularity", "monthly", "monthly | quarterly (whole quarter of --month)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default stdout)")
	return cmd
}
