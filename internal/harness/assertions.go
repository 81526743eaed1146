package harness

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// AssertionError describes one expectation that did not hold.
type AssertionError struct {
	Where    string // "step 3" or "final"
	Field    string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: %s: expected %s, got %s", e.Where, e.Field, e.Expected, e.Actual)
}

// checkStep compares one step's outcome with its expect clause.
func checkStep(r *Result, i int, want *StepExpect, got StepResult) {
	if want == nil {
		return
	}
	where := fmt.Sprintf("step %d", i+1)
	fail := func(field, expected, actual string) {
		r.AddError((&AssertionError{Where: where, Field: field, Expected: expected, Actual: actual}).Error())
	}

	if want.Op != "" && want.Op != got.Entry.Op {
		fail("op", quote(want.Op), quote(got.Entry.Op))
	}
	if want.Result != "" && want.Result != got.Entry.Result {
		fail("result", quote(want.Result), quote(got.Entry.Result))
	}
	if want.Product != "" && want.Product != got.Entry.Product {
		fail("product", quote(want.Product), quote(got.Entry.Product))
	}
	if want.Replies != nil {
		n := replyCount(got)
		if *want.Replies != n {
			fail("replies", fmt.Sprint(*want.Replies), fmt.Sprint(n))
		}
	}
}

// replyCount counts gateway calls other than callback acknowledgements.
func replyCount(s StepResult) int {
	n := 0
	for _, c := range s.Calls {
		if c.Op != "answer_button" {
			n++
		}
	}
	return n
}

// checkFinal compares the end state with the scenario's expect block.
func checkFinal(r *Result, want *FinalExpect) {
	if want == nil {
		return
	}
	fail := func(field, expected, actual string) {
		r.AddError((&AssertionError{Where: "final", Field: field, Expected: expected, Actual: actual}).Error())
	}

	scopes := make([]string, 0, len(want.Lists))
	for sc := range want.Lists {
		scopes = append(scopes, sc)
	}
	sort.Strings(scopes)
	for _, sc := range scopes {
		got := r.Lists[sc]
		if !slices.Equal(want.Lists[sc], got) && (len(want.Lists[sc]) != 0 || len(got) != 0) {
			fail("list "+sc, formatNames(want.Lists[sc]), formatNames(got))
		}
	}

	if want.Vocabulary != nil && !slices.Equal(want.Vocabulary, r.Vocabulary) {
		fail("vocabulary", formatNames(want.Vocabulary), formatNames(r.Vocabulary))
	}
	if want.Saves != nil && *want.Saves != r.Saves {
		fail("saves", fmt.Sprint(*want.Saves), fmt.Sprint(r.Saves))
	}
}

func formatNames(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}
