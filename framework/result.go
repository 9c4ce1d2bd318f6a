package framework

import (
	"fmt"
	"io"
	"strings"
	"time"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID       TestID
	Errors       []error
	Failed       bool
	Skipped      bool
	SkipReason   string
	Requirements []string
	Duration     time.Duration
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Find returns the result for the test with the given path, if it ran.
func (r Results) Find(path ...string) (TestResult, bool) {
	want := TestID{Path: path}.String()
	for _, t := range r.Tests {
		if t.TestID.String() == want {
			return t, true
		}
	}
	return TestResult{}, false
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

func (t TestID) IsRoot() bool {
	return len(t.Path) == 0
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}

func PrintResults(out io.Writer, results Results) {
	skipped := 0
	for _, t := range results.Tests {
		if t.Skipped {
			skipped++
		}
	}
	if results.OK() {
		fmt.Fprintf(out, "All tests passed (%d run, %d skipped)\n", len(results.Tests)-skipped, skipped)
		return
	}
	fmt.Fprintf(out, "FAILED TESTS (%d of %d):\n", len(results.Failures), len(results.Tests))
	for _, f := range results.Failures {
		fmt.Fprintf(out, "  * %s\n", f.TestID)
		for _, err := range f.Errors {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(out, "      %s\n", line)
			}
		}
	}
}
