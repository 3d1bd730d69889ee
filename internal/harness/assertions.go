package harness

import (
	"fmt"
	"strings"
)

const dateLayout = "2006-01-02"

// AssertionError reports every expectation a scenario run failed to
// meet, one line per failure.
type AssertionError struct {
	Scenario string
	Failures []string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario %s: %d expectation(s) failed\n", e.Scenario, len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&buf, "  - %s\n", f)
	}
	return buf.String()
}

// Verify evaluates the scenario's expectations against the run result.
// All expectations are checked; failures are collected, not short-circuited.
func Verify(r *Result) error {
	var failures []string
	fail := func(format string, args ...any) {
		failures = append(failures, fmt.Sprintf(format, args...))
	}

	expect := r.Scenario.Expect
	run := r.Run

	if got := len(run.Samples); got != expect.Samples {
		fail("samples: expected %d, got %d", expect.Samples, got)
	}
	if got := len(run.Long); got != expect.LongRows {
		fail("long rows: expected %d, got %d", expect.LongRows, got)
	}
	if run.Excluded != expect.Excluded {
		fail("excluded rows: expected %d, got %d", expect.Excluded, run.Excluded)
	}

	unmapped := run.Diagnostics.Unmapped()
	if len(unmapped) != len(expect.UnmappedCodes) {
		fail("unmapped codes: expected %d, got %d", len(expect.UnmappedCodes), len(unmapped))
	} else {
		for i, want := range expect.UnmappedCodes {
			got := unmapped[i]
			if got.Kind != want.Kind || got.Code != want.Code || got.Occurrences != want.Occurrences {
				fail("unmapped[%d]: expected %s %q x%d, got %s %q x%d",
					i, want.Kind, want.Code, want.Occurrences, got.Kind, got.Code, got.Occurrences)
			}
		}
	}

	byName := make(map[string]int, len(run.Manifests))
	for _, m := range run.Manifests {
		byName[m.Name] = m.Rows
	}
	for _, want := range expect.Artifacts {
		rows, ok := byName[want.Name]
		if !ok {
			fail("artifact %q: not written", want.Name)
			continue
		}
		if rows != want.Rows {
			fail("artifact %q: expected %d rows, got %d", want.Name, want.Rows, rows)
		}
	}

	for _, want := range expect.Values {
		found := false
		for _, row := range run.Long {
			if row.Date.Format(dateLayout) != want.Date ||
				row.Site != want.Site ||
				row.SampleType != want.SampleType ||
				row.Taxon != want.Taxon {
				continue
			}
			found = true
			if row.OrganismsL != want.OrganismsL {
				fail("value %s %s %s %s: expected organisms_L %v, got %v",
					want.Date, want.Site, want.SampleType, want.Taxon, want.OrganismsL, row.OrganismsL)
			}
			break
		}
		if !found {
			fail("value %s %s %s %s: no matching long row",
				want.Date, want.Site, want.SampleType, want.Taxon)
		}
	}

	if len(failures) > 0 {
		return &AssertionError{Scenario: r.Scenario.Name, Failures: failures}
	}
	return nil
}
