package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"etherplot/expr"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var checkCmd = &cobra.Command{
	Use:   "check [formula...]",
	Short: "Compile formulas and print their postfix form",
	Long: `Compiles each formula (or the configured plots when none are given), prints the
postfix program and evaluates it at the --at points. Exits non-zero if any formula is invalid.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Float64Slice("at", []float64{-1, 0, 1}, "x values to evaluate at")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup(cmd)
	if err != nil {
		return err
	}
	at, _ := cmd.Flags().GetFloat64Slice("at")
	formulas := args
	if len(formulas) == 0 {
		formulas = cfg.Plots
	}

	out := cmd.OutOrStdout()
	p := termenv.NewOutput(out).EnvColorProfile()
	width := 0
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = w
		}
	}

	invalid := 0
	for _, f := range formulas {
		if !report(out, p, width, f, at) {
			invalid++
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d formulas invalid", invalid, len(formulas))
	}
	return nil
}

// report prints one formula and returns whether it compiled.
func report(w io.Writer, p termenv.Profile, width int, formula string, at []float64) bool {
	ex := expr.Compile(formula)
	if err := ex.Err(); err != nil {
		mark := p.String("✗").Foreground(p.Color("#f44336"))
		fmt.Fprintf(w, "%s %s\n    %v\n", mark, formula, err)
		var ce *expr.CompileError
		if errors.As(err, &ce) && ce.Reason == expr.ReasonUnknownFunction {
			fmt.Fprintf(w, "    known functions: %s\n", strings.Join(expr.Funcs(), ", "))
		}
		return false
	}

	mark := p.String("✓").Foreground(p.Color("#4caf50"))
	fmt.Fprintf(w, "%s %s\n", mark, formula)
	fmt.Fprintln(w, clip("    postfix: "+ex.Postfix(), width))
	if d, ok := ex.Domain(); ok {
		fmt.Fprintf(w, "    domain:  [%s, %s]\n", num(d.Lower), num(d.Upper))
	}

	vals := make([]string, 0, len(at))
	for _, x := range at {
		y, err := ex.EvalAt(x)
		if err != nil {
			vals = append(vals, fmt.Sprintf("f(%s)=%s", num(x), p.String("error").Faint()))
			continue
		}
		vals = append(vals, fmt.Sprintf("f(%s)=%s", num(x), num(y)))
	}
	if len(vals) > 0 {
		fmt.Fprintln(w, clip("    "+strings.Join(vals, "  "), width))
	}
	return true
}

func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func clip(s string, width int) string {
	if width <= 0 || len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}
