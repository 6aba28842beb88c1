package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"compify/api/internal/mathtext"
	"compify/api/internal/solver/types"
	"compify/api/internal/util"
)

var (
	solveImage string
	outputFmt  string
	engineName string
	verifyProb string
	verifyCand string
)

var solveCmd = &cobra.Command{
	Use:   "solve [problem text...]",
	Short: "Solve one problem and print the solution",
	Example: `  compify solve "Find all real x with x^2 = 2x"
  compify solve --image page.jpg --output yaml`,
	RunE: runSolve,
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check a candidate solution against a problem",
	Args:  cobra.NoArgs,
	RunE:  runVerify,
}

func init() {
	for _, c := range []*cobra.Command{solveCmd, verifyCmd} {
		c.Flags().StringVarP(&outputFmt, "output", "o", "text", "output format: text, json or yaml")
		c.Flags().StringVar(&engineName, "engine", "", "engine to use (default COMPIFY_ENGINE)")
	}
	solveCmd.Flags().StringVar(&solveImage, "image", "", "path to a photo of the problem")
	verifyCmd.Flags().StringVar(&verifyProb, "problem", "", "problem statement")
	verifyCmd.Flags().StringVar(&verifyCand, "candidate", "", "candidate solution")
}

func runSolve(cmd *cobra.Command, args []string) error {
	req := types.SolveRequest{ProblemText: strings.TrimSpace(strings.Join(args, " "))}
	if solveImage != "" {
		b, err := os.ReadFile(solveImage)
		if err != nil {
			return err
		}
		req.Image = util.ImageDataURL(b)
	}
	if !req.HasInput() {
		return errors.New("nothing to solve: pass problem text or --image")
	}
	if err := checkFormat(outputFmt); err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	gw, err := a.gateway(engineName)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()
	sol, err := gw.RequestSolution(ctx, req)
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), outputFmt, sol)
}

func runVerify(cmd *cobra.Command, _ []string) error {
	req := types.VerifyRequest{ProblemText: verifyProb, CandidateSolution: verifyCand}
	if !req.Valid() {
		return errors.New("both --problem and --candidate are required")
	}
	if err := checkFormat(outputFmt); err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	gw, err := a.gateway(engineName)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()
	out, err := gw.RequestVerification(ctx, req)
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), outputFmt, out)
}

func checkFormat(f string) error {
	switch f {
	case "text", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unknown output format %q", f)
}

func writeResult(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		_, err := io.WriteString(w, plainText(v))
		return err
	}
	return fmt.Errorf("unknown output format %q", format)
}

func plainText(v any) string {
	p := func(s string) string { return mathtext.Render(s, mathtext.Plain{}) }
	var b strings.Builder
	switch r := v.(type) {
	case types.Solution:
		if r.OriginalProblemOCR != "" {
			fmt.Fprintf(&b, "Problem:\n%s\n\n", p(r.OriginalProblemOCR))
		}
		fmt.Fprintf(&b, "Solution:\n%s\n\nAnswer: %s\n", p(r.StepByStepSolution), p(r.FinalAnswer))
		if len(r.SimilarProblems) > 0 {
			b.WriteString("\nSimilar problems:\n")
			for i, sp := range r.SimilarProblems {
				fmt.Fprintf(&b, "%d. %s (%s, %s)\n   %s\n", i+1, sp.Title, sp.Source, sp.Difficulty, p(sp.ProblemText))
			}
		}
	case types.VerificationOutcome:
		if r.IsCorrect {
			b.WriteString("Correct.\n")
		} else {
			b.WriteString("Not quite right.\n")
		}
		fmt.Fprintf(&b, "\n%s\n", p(r.Feedback))
		if !r.IsCorrect {
			fmt.Fprintf(&b, "\nFull solution:\n%s\n", p(r.CorrectSolution))
		}
	default:
		fmt.Fprintf(&b, "%v\n", v)
	}
	return b.String()
}
