package framework

import (
	"io"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// ReportValue describes results as a JSON-compatible value: overall counts plus one entry per
// test with its status, duration, requirement IDs and error messages.
func ReportValue(results Results) ldvalue.Value {
	passed, skipped := 0, 0
	tests := ldvalue.ArrayBuild()
	for _, t := range results.Tests {
		status := "passed"
		switch {
		case t.Failed:
			status = "failed"
		case t.Skipped:
			status = "skipped"
			skipped++
		default:
			passed++
		}
		entry := ldvalue.ObjectBuild().
			Set("id", ldvalue.String(t.TestID.String())).
			Set("status", ldvalue.String(status)).
			Set("durationMs", ldvalue.Int(int(t.Duration/time.Millisecond)))
		if t.SkipReason != "" {
			entry = entry.Set("skipReason", ldvalue.String(t.SkipReason))
		}
		if len(t.Requirements) > 0 {
			reqs := ldvalue.ArrayBuild()
			for _, r := range t.Requirements {
				reqs = reqs.Add(ldvalue.String(r))
			}
			entry = entry.Set("requirements", reqs.Build())
		}
		if len(t.Errors) > 0 {
			errs := ldvalue.ArrayBuild()
			for _, err := range t.Errors {
				errs = errs.Add(ldvalue.String(err.Error()))
			}
			entry = entry.Set("errors", errs.Build())
		}
		tests = tests.Add(entry.Build())
	}

	return ldvalue.ObjectBuild().
		Set("ok", ldvalue.Bool(results.OK())).
		Set("passed", ldvalue.Int(passed)).
		Set("failed", ldvalue.Int(len(results.Failures))).
		Set("skipped", ldvalue.Int(skipped)).
		Set("tests", tests.Build()).
		Build()
}

// WriteJSONReport writes ReportValue(results) to w as a single line of JSON.
func WriteJSONReport(w io.Writer, results Results) error {
	_, err := io.WriteString(w, ReportValue(results).JSONString()+"\n")
	return err
}
