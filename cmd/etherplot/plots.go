package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"etherplot/expr"
	"etherplot/plot"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var plotsCmd = &cobra.Command{
	Use:   "plots",
	Short: "Manage the stored plots",
	Long:  `List, add and remove plots in the configured store without opening the window.`,
}

var plotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored plots",
	Args:  cobra.NoArgs,
	RunE:  runPlotsList,
}

var plotsAddCmd = &cobra.Command{
	Use:   "add [formula]",
	Short: "Store a new plot",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlotsAdd,
}

var plotsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a stored plot",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlotsRm,
}

func init() {
	rootCmd.AddCommand(plotsCmd)
	plotsCmd.AddCommand(plotsListCmd, plotsAddCmd, plotsRmCmd)
	plotsAddCmd.Flags().String("color", "", "Curve color as #rrggbb (default random)")
	plotsAddCmd.Flags().String("quick", "", "Add a preset by name instead of a formula, e.g. \"square root\"")
}

func runPlotsList(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer closeStore(store, log)

	plots, err := store.Load(cmd.Context(), 0)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(plots) == 0 {
		fmt.Fprintln(out, "no plots stored")
		return nil
	}

	p := termenv.NewOutput(out).EnvColorProfile()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOLOR\tSTATE\tFORMULA")
	for _, pl := range plots {
		swatch := p.String("■").Foreground(p.Color(pl.Color.Hex()))
		fmt.Fprintf(tw, "%d\t%s %s\t%s\t%s\n", pl.ID, swatch, pl.Color.Hex(), state(pl), pl.Formula)
	}
	return tw.Flush()
}

func state(p plot.Plot) string {
	var s []string
	if !p.Visible {
		s = append(s, "hidden")
	}
	if !p.Valid {
		s = append(s, "invalid")
	}
	if len(s) == 0 {
		return "ok"
	}
	return strings.Join(s, ",")
}

func runPlotsAdd(cmd *cobra.Command, args []string) error {
	quick, _ := cmd.Flags().GetString("quick")
	hex, _ := cmd.Flags().GetString("color")

	var formula string
	switch {
	case quick != "" && len(args) > 0:
		return fmt.Errorf("give either a formula or --quick, not both")
	case quick != "":
		q, ok := plot.Quick(quick)
		if !ok {
			return fmt.Errorf("unknown quick function %q", quick)
		}
		formula = q.Formula
	case len(args) > 0:
		formula = strings.TrimSpace(args[0])
	}
	if formula == "" {
		return fmt.Errorf("formula is empty")
	}

	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore(store, log)

	saved, err := store.Load(ctx, 0)
	if err != nil {
		return err
	}
	list := plot.NewList(saved, rand.New(rand.NewSource(time.Now().UnixNano())))
	var added plot.Plot
	if hex != "" {
		c, err := plot.ParseColor(hex)
		if err != nil {
			return err
		}
		added = list.AddColored(formula, c)
	} else {
		added = list.Add(formula)
	}
	if err := expr.Compile(formula).Err(); err != nil {
		log.Warn("formula does not compile, storing it as invalid", "formula", formula, "error", err)
		if added, err = list.SetValid(added.ID, false); err != nil {
			return err
		}
	}

	if err := plot.Sync(ctx, store, plot.Diff(saved, list.Plots())); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added plot %d: %s\n", added.ID, added.Formula)
	return nil
}

func runPlotsRm(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid plot id %q", args[0])
	}
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer closeStore(store, log)

	if err := store.Delete(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed plot %d\n", id)
	return nil
}
