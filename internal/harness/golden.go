package harness

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/ocptv"
	"github.com/roach88/ocptv/internal/testutil"
)

// RunWithGolden executes a scenario with a deterministic clock and compares
// the emitted lines against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the output doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...ocptv.RunOption) (*Result, error) {
	t.Helper()

	clock := testutil.NewDeterministicClock()
	opts = append([]ocptv.RunOption{ocptv.WithClock(clock.Now)}, opts...)

	result, err := Execute(scenario, nil, opts...)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares a result's lines against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(strings.Join(result.Lines, "\n")+"\n"))
}
