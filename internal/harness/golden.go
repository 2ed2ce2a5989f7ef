package harness

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/stratalab/strata/internal/report"
)

// RunWithGolden executes a scenario and compares the rendered text report
// against the golden snapshot named by the scenario.
//
// Golden files live in testdata/golden relative to the calling test's
// package. Regenerate them with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("failed to run scenario %s: %v", scenario.Name, err)
	}
	if !result.Pass {
		for _, msg := range result.Errors {
			t.Error(msg)
		}
		t.Fatalf("scenario %s failed, skipping golden comparison", scenario.Name)
	}
	if result.Report == nil {
		t.Fatalf("scenario %s produced no report", scenario.Name)
	}

	AssertGolden(t, scenario.GoldenName(), result)
	return result
}

// AssertGolden compares the result's rendered text report against the
// named golden snapshot. The text rendering is byte-stable for a given
// report, so any diff is a real behavior change.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	var buf bytes.Buffer
	if err := report.RenderText(&buf, result.Report); err != nil {
		t.Fatalf("failed to render report: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, buf.Bytes())
}
