package rstb

import (
	"encoding/xml"
	"fmt"
	"os"
)

// junitSuite and junitCase mirror the subset of the JUnit XML schema every
// CI consumer (GitHub Actions, GitLab, Jenkins) actually reads: a
// testsuite wrapping testcase elements, each optionally carrying a single
// failure child.
type junitSuite struct {
	XMLName  xml.Name    `xml:"testsuite"`
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Skipped  int         `xml:"skipped,attr"`
	Time     float64     `xml:"time,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name    string        `xml:"name,attr"`
	Time    float64       `xml:"time,attr"`
	Failure *junitFailure `xml:"failure,omitempty"`
	Skipped *junitSkipped `xml:"skipped,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Text    string `xml:",chardata"`
}

type junitSkipped struct {
	Message string `xml:"message,attr"`
}

// writeJUnitFile renders tests as a single JUnit testsuite and writes it
// to path. There is no JUnit-writing library anywhere in the retrieved
// pack (nor, more broadly, any ecosystem-standard one); encoding/xml is
// the idiomatic stdlib choice every Go CI tool that emits this format
// (e.g. gotestsum) is itself built on.
func writeJUnitFile(path string, tests []*Test) error {
	suite := junitSuite{Name: "rstb"}
	for _, t := range tests {
		c := junitCase{Name: t.name, Time: t.WallDuration().Seconds()}
		suite.Tests++
		switch {
		case t.skipped:
			suite.Skipped++
			c.Skipped = &junitSkipped{Message: t.resultErr.Error()}
		case !t.passed:
			suite.Failures++
			msg := "test failed"
			if t.resultErr != nil {
				msg = t.resultErr.Error()
			}
			c.Failure = &junitFailure{Message: msg, Text: fmt.Sprintf("%v", t.resultErr)}
		}
		suite.Time += c.Time
		suite.Cases = append(suite.Cases, c)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rstb: creating %s: %w", path, err)
	}
	defer f.Close()

	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if _, err := f.WriteString(xml.Header); err != nil {
		return fmt.Errorf("rstb: writing %s: %w", path, err)
	}
	if err := enc.Encode(suite); err != nil {
		return fmt.Errorf("rstb: encoding %s: %w", path, err)
	}
	return nil
}
