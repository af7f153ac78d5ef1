// Command rstb-results pretty-prints a results.xml file written by a
// go-rstb run.
package main

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type testsuite struct {
	Name     string     `xml:"name,attr"`
	Tests    int        `xml:"tests,attr"`
	Failures int        `xml:"failures,attr"`
	Skipped  int        `xml:"skipped,attr"`
	Time     float64    `xml:"time,attr"`
	Cases    []testcase `xml:"testcase"`
}

type testcase struct {
	Name    string   `xml:"name,attr"`
	Time    float64  `xml:"time,attr"`
	Failure *failure `xml:"failure"`
	Skipped *skipped `xml:"skipped"`
}

type failure struct {
	Message string `xml:"message,attr"`
	Text    string `xml:",chardata"`
}

type skipped struct {
	Message string `xml:"message,attr"`
}

var rootCmd = &cobra.Command{
	Use:   "rstb-results [path]",
	Short: "Pretty-print a go-rstb results.xml file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "results.xml"
		if len(args) == 1 {
			path = args[0]
		}
		return printResults(path)
	},
}

func printResults(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	var suite testsuite
	if err := xml.Unmarshal(data, &suite); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	fmt.Printf("%s: %d tests, %d failed, %d skipped, %.3fs\n",
		suite.Name, suite.Tests, suite.Failures, suite.Skipped, suite.Time)
	for _, tc := range suite.Cases {
		status := "PASS"
		switch {
		case tc.Failure != nil:
			status = "FAIL"
		case tc.Skipped != nil:
			status = "SKIP"
		}
		fmt.Printf("  [%s] %-24s %.3fs\n", status, tc.Name, tc.Time)
		if tc.Failure != nil {
			fmt.Printf("        %s\n", tc.Failure.Message)
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
