// motionplan-golden replays motion-planning scenarios against the engine
// and records or checks their golden output.
//
//	motionplan-golden run     --suite testdata/suite.txt --casedir testdata/cases
//	motionplan-golden compare --suite testdata/suite.txt --casedir testdata/cases
//	motionplan-golden update  --only arcs
//
// run can serve the planner metrics of the replayed cases with
// --metrics-addr, optionally staying up for --metrics-linger afterwards.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Opentrons/OpenTrons/pkg/engine"
	"github.com/Opentrons/OpenTrons/pkg/log"
)

var (
	suitePath string
	caseDir   string
	only      string
	logLevel  string

	metricsAddr   string
	metricsLinger time.Duration
)

var logger = log.GetLogger("golden")

var rootCmd = &cobra.Command{
	Use:           "motionplan-golden",
	Short:         "Replay motion-planning scenarios and compare golden output",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.GetLogger("").SetLevel(log.ParseLevel(logLevel))
	},
}

// runCmd writes actual.txt for every case.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate actual.txt for each case",
	RunE: func(cmd *cobra.Command, args []string) error {
		cases, err := selectCases(suitePath, caseDir, only)
		if err != nil {
			return err
		}

		endpoint, err := startMetrics(metricsAddr)
		if err != nil {
			return err
		}
		runErr := writeActual(cases, endpoint.options())
		linger := metricsLinger
		if runErr != nil {
			linger = 0
		}
		if err := endpoint.stop(linger); err != nil && runErr == nil {
			return err
		}
		return runErr
	},
}

func writeActual(cases []goldenCase, opts []engine.Option) error {
	for _, c := range cases {
		out, err := c.generate(opts...)
		if err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
		if err := os.WriteFile(c.actual(), []byte(out), 0o644); err != nil {
			return err
		}
		logger.WithField("case", c.name).Info("wrote actual output")
	}
	return nil
}

// compareCmd fails if any case's output differs from expected.txt.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Check each case against expected.txt",
	RunE: func(cmd *cobra.Command, args []string) error {
		cases, err := selectCases(suitePath, caseDir, only)
		if err != nil {
			return err
		}
		failed := 0
		for _, c := range cases {
			out, err := c.generate()
			if err != nil {
				return fmt.Errorf("%s: %w", c.name, err)
			}
			want, err := os.ReadFile(c.expected())
			if err != nil {
				return fmt.Errorf("%s: missing expected: %w", c.name, err)
			}
			if diff := firstDiff(out, string(want)); diff != "" {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %s\n", c.name, diff)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", c.name)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d cases differ", failed, len(cases))
		}
		return nil
	},
}

// updateCmd rewrites expected.txt from the current output.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Rewrite expected.txt from the current output",
	RunE: func(cmd *cobra.Command, args []string) error {
		cases, err := selectCases(suitePath, caseDir, only)
		if err != nil {
			return err
		}
		for _, c := range cases {
			out, err := c.generate()
			if err != nil {
				return fmt.Errorf("%s: %w", c.name, err)
			}
			if err := os.WriteFile(c.expected(), []byte(out), 0o644); err != nil {
				return err
			}
			logger.WithField("case", c.name).Warn("expected output updated")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&suitePath, "suite", "testdata/suite.txt", "suite file listing case names")
	rootCmd.PersistentFlags().StringVar(&caseDir, "casedir", "testdata/cases", "directory holding one subdirectory per case")
	rootCmd.PersistentFlags().StringVar(&only, "only", "", "only process the named case")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve planner metrics on this address during the run")
	runCmd.Flags().DurationVar(&metricsLinger, "metrics-linger", 0, "keep the metrics endpoint up this long after the run")

	rootCmd.AddCommand(runCmd, compareCmd, updateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(2)
	}
}
