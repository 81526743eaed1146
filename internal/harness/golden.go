package harness

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/shoplist/internal/bot"
	"github.com/roach88/shoplist/internal/testutil"
)

// Transcript renders a scenario run as plain text: each inbound event,
// the outcome the loop recorded and the gateway calls it made, then the
// final state.
func Transcript(s *Scenario, r *Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", s.Name)

	for i, step := range r.Steps {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "> %d %s\n", i+1, describeEvent(step.Event))

		e := step.Entry
		fmt.Fprintf(&sb, "  = %s %s %s", e.Flow, e.Op, e.Result)
		if e.Product != "" {
			fmt.Fprintf(&sb, " %q", e.Product)
		}
		sb.WriteString("\n")
		if e.Error != "" {
			fmt.Fprintf(&sb, "  ! %s\n", e.Error)
		}
		sb.WriteString(testutil.Transcript(step.Calls))
	}

	sb.WriteString("\n== final\n")
	for _, sc := range sortedKeys(r.Lists) {
		fmt.Fprintf(&sb, "list %s: %s\n", sc, formatNames(r.Lists[sc]))
	}
	fmt.Fprintf(&sb, "vocabulary: %s\n", formatNames(r.Vocabulary))
	fmt.Fprintf(&sb, "saves: %d\n", r.Saves)
	return sb.String()
}

func describeEvent(ev bot.Event) string {
	switch ev := ev.(type) {
	case bot.TextMessage:
		return fmt.Sprintf("[%d] text %q", ev.Sender, ev.Text)
	case bot.MenuSelect:
		return fmt.Sprintf("[%d] menu %s", ev.Sender, ev.Item)
	case bot.ButtonPress:
		return fmt.Sprintf("[%d] button %s on %d/%s", ev.Sender, ev.ButtonID, ev.Message.Chat, ev.Message.MessageID)
	case bot.InlineQuery:
		return fmt.Sprintf("[%d] inline_query %q", ev.Sender, ev.Text)
	case bot.InlineChoice:
		return fmt.Sprintf("[%d] inline_choice %s", ev.Sender, ev.ResultID)
	default:
		return fmt.Sprintf("[%d] %s", ev.SenderID(), ev.Kind())
	}
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RunWithGolden executes a scenario and compares its transcript against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Expectation mismatches fail the test before the golden comparison.
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}
	for _, e := range result.Errors {
		t.Errorf("scenario %s: %s", scenario.Name, e)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, []byte(Transcript(scenario, result)))
	return result
}
