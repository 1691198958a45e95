package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"utility-kpi/internal/domain/kpi"
	reportsDomain "utility-kpi/internal/domain/reports"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printSummary(w io.Writer, s session, out reportsDomain.KPISummary) {
	a := out.KPI
	fmt.Fprintf(w, "Period: %s  (snapshot %s, %d records)\n\n", out.Period, out.SnapshotID, a.Records)

	tw := newTable(w)
	fmt.Fprintln(tw, "METRIC\tACTUAL\tBUDGET\tATTAINMENT")
	fmt.Fprintf(tw, "Revenue\t%s\t%s\t%.1f%%\n", s.fmtMoney(a.Revenue.Total.Actual), s.fmtMoney(a.Revenue.Total.Budget), kpi.BudgetAttainment(a.Revenue.Total))
	fmt.Fprintf(tw, "Sold kWh\t%.0f\t%.0f\t%.1f%%\n", a.Consumption.SoldKwh.Actual, a.Consumption.SoldKwh.Budget, kpi.BudgetAttainment(a.Consumption.SoldKwh))
	fmt.Fprintf(tw, "Connections\t%.0f\t%.0f\t%.1f%%\n", a.Connections.Total.Actual, a.Connections.Total.Budget, kpi.BudgetAttainment(a.Connections.Total))
	fmt.Fprintf(tw, "Weighted ARPU\t%s\t%s\t\n", s.fmtMoney(out.Derived.WeightedARPU.Actual), s.fmtMoney(out.Derived.WeightedARPU.Budget))
	fmt.Fprintf(tw, "Pending connections\t%.0f\t%.0f\t\n", out.Derived.PendingConnections.Actual, out.Derived.PendingConnections.Budget)
	tw.Flush()

	c := a.Clients
	fmt.Fprintf(w, "\nClients: %d (new %d, closed %d, inactive %d, woken up %d)  inactivity %.1f%%\n",
		c.Total, c.New, c.Closed, c.Inactive, c.WokenUp, out.Derived.InactivityRate)

	if len(out.Measures) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw = newTable(w)
	fmt.Fprintln(tw, "MEASURE\tACTUAL\tBUDGET")
	for _, m := range kpi.Measures {
		if p, ok := out.Measures[m]; ok {
			fmt.Fprintf(tw, "%s\t%.2f\t%.2f\n", m, p.Actual, p.Budget)
		}
	}
	tw.Flush()
}

func printComparison(w io.Writer, s session, out kpi.ComparisonResult) {
	p := out.Periods
	tw := newTable(w)
	fmt.Fprintf(tw, "METRIC\t%s\t%s\t%s\tVS PREV\tVS YEAR AGO\n", p.Current.Label, p.Previous.Label, p.YearAgo.Label)
	fmt.Fprintf(tw, "Revenue\t%s\t%s\t%s\t%s\t%s\n",
		s.fmtMoney(out.Current.Revenue.Total.Actual), s.fmtMoney(out.Previous.Revenue.Total.Actual), s.fmtMoney(out.YearAgo.Revenue.Total.Actual),
		out.VsPrevious.Revenue, out.VsYearAgo.Revenue)
	fmt.Fprintf(tw, "Sold kWh\t%.0f\t%.0f\t%.0f\t%s\t%s\n",
		out.Current.Consumption.SoldKwh.Actual, out.Previous.Consumption.SoldKwh.Actual, out.YearAgo.Consumption.SoldKwh.Actual,
		out.VsPrevious.Consumption, out.VsYearAgo.Consumption)
	fmt.Fprintf(tw, "Connections\t%.0f\t%.0f\t%.0f\t%s\t%s\n",
		out.Current.Connections.Total.Actual, out.Previous.Connections.Total.Actual, out.YearAgo.Connections.Total.Actual,
		out.VsPrevious.Connections, out.VsYearAgo.Connections)
	fmt.Fprintf(tw, "Clients\t%d\t%d\t%d\t%s\t%s\n",
		out.Current.Clients.Total, out.Previous.Clients.Total, out.YearAgo.Clients.Total,
		out.VsPrevious.Clients, out.VsYearAgo.Clients)
	fmt.Fprintf(tw, "Weighted ARPU\t%s\t%s\t%s\t%s\t%s\n",
		s.fmtMoney(kpi.WeightedARPU(out.Current).Actual), s.fmtMoney(kpi.WeightedARPU(out.Previous).Actual), s.fmtMoney(kpi.WeightedARPU(out.YearAgo).Actual),
		out.VsPrevious.ARPU, out.VsYearAgo.ARPU)
	tw.Flush()
}

func printTrend(w io.Writer, s session, points []kpi.TrendPoint) {
	tw := newTable(w)
	fmt.Fprintln(tw, "MONTH\tREVENUE\tSOLD KWH\tCONNECTIONS\tCLIENTS\tARPU")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%s\t%.0f\t%.0f\t%d\t%s\n",
			p.Label, s.fmtMoney(p.KPI.Revenue.Total.Actual), p.KPI.Consumption.SoldKwh.Actual,
			p.KPI.Connections.Total.Actual, p.KPI.Clients.Total, s.fmtMoney(p.Derived.WeightedARPU.Actual))
	}
	tw.Flush()
}

func printGroups(w io.Writer, s session, groups []kpi.Group) {
	tw := newTable(w)
	fmt.Fprintln(tw, "GROUP\tREVENUE\tSOLD KWH\tCONNECTIONS\tCLIENTS")
	var walk func(gs []kpi.Group, depth int)
	walk = func(gs []kpi.Group, depth int) {
		for _, g := range gs {
			fmt.Fprintf(tw, "%s%s=%s\t%s\t%.0f\t%.0f\t%d\n",
				strings.Repeat("  ", depth), g.Dimension, g.Key,
				s.fmtMoney(g.KPI.Revenue.Total.Actual), g.KPI.Consumption.SoldKwh.Actual,
				g.KPI.Connections.Total.Actual, g.KPI.Clients.Total)
			walk(g.Children, depth+1)
		}
	}
	walk(groups, 0)
	tw.Flush()
}
