package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/shoplist/internal/bot"
	"github.com/roach88/shoplist/internal/store"
)

// Scenario is a scripted conversation with the bot.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Scope is the store mode: "shared" (default) or "per_user".
	Scope string `yaml:"scope,omitempty"`

	// Seed is the state before the first step.
	Seed Seed `yaml:"seed,omitempty"`

	// Steps are delivered to the bot one at a time, in order.
	Steps []Step `yaml:"steps"`

	// Expect is checked against the state after the last step.
	Expect *FinalExpect `yaml:"expect,omitempty"`
}

// Seed is the initial list state. List keys are scopes ("shared" or a
// user id).
type Seed struct {
	Lists      map[string][]string `yaml:"lists,omitempty"`
	Vocabulary []string            `yaml:"vocabulary,omitempty"`
}

// Step is one inbound event. Exactly one of Text, Button, InlineQuery and
// InlineChoice must be set.
type Step struct {
	// Sender defaults to 1. Chat defaults to Sender.
	Sender int64 `yaml:"sender,omitempty"`
	Chat   int64 `yaml:"chat,omitempty"`

	// Text is a typed message; menu labels and commands become menu presses.
	Text string `yaml:"text,omitempty"`

	// Button is the id of a pressed inline button. Message is the id of
	// the message it belongs to (default "1").
	Button  string `yaml:"button,omitempty"`
	Message string `yaml:"message,omitempty"`

	// InlineQuery is the text typed after the bot's @name. A pointer so an
	// empty query can be sent.
	InlineQuery *string `yaml:"inline_query,omitempty"`

	// InlineChoice is the id of a chosen inline result; Query is the text
	// the user had typed.
	InlineChoice string `yaml:"inline_choice,omitempty"`
	Query        string `yaml:"query,omitempty"`

	// SaveFails makes every save during this step fail.
	SaveFails bool `yaml:"save_fails,omitempty"`

	// GatewayDown lists gateway ops that fail during this step
	// ("send_text", "send_choices", "edit", "answer_button", "answer_inline").
	GatewayDown []string `yaml:"gateway_down,omitempty"`

	Expect *StepExpect `yaml:"expect,omitempty"`
}

// StepExpect is matched against the recorded outcome. Empty fields are
// not checked.
type StepExpect struct {
	Op      string `yaml:"op,omitempty"`
	Result  string `yaml:"result,omitempty"`
	Product string `yaml:"product,omitempty"`
	Replies *int   `yaml:"replies,omitempty"`
}

// FinalExpect is matched against the state after the last step.
type FinalExpect struct {
	// Lists maps scope to exact list contents. Scopes not named are not checked.
	Lists      map[string][]string `yaml:"lists,omitempty"`
	Vocabulary []string            `yaml:"vocabulary,omitempty"`

	// Saves is the number of successful saves.
	Saves *int `yaml:"saves,omitempty"`
}

var gatewayOps = map[string]bool{
	"send_text":     true,
	"send_choices":  true,
	"edit":          true,
	"answer_button": true,
	"answer_inline": true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	switch store.Mode(s.Scope) {
	case "", store.ModeShared, store.ModePerUser:
	default:
		return fmt.Errorf("scope must be %q or %q, got %q", store.ModeShared, store.ModePerUser, s.Scope)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, st *Step) error {
	kinds := 0
	for _, set := range []bool{st.Text != "", st.Button != "", st.InlineQuery != nil, st.InlineChoice != ""} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return fmt.Errorf("steps[%d]: exactly one of text, button, inline_query, inline_choice is required", i)
	}
	if st.Message != "" && st.Button == "" {
		return fmt.Errorf("steps[%d]: message is only valid with button", i)
	}
	if st.Query != "" && st.InlineChoice == "" {
		return fmt.Errorf("steps[%d]: query is only valid with inline_choice", i)
	}
	if st.Sender < 0 || st.Chat < 0 {
		return fmt.Errorf("steps[%d]: sender and chat must be positive", i)
	}
	for _, op := range st.GatewayDown {
		if !gatewayOps[op] {
			return fmt.Errorf("steps[%d]: unknown gateway op %q", i, op)
		}
	}
	return nil
}

// event builds the bot event for the i-th step (0-based).
func (st *Step) event(i int) bot.Event {
	sender := st.Sender
	if sender == 0 {
		sender = 1
	}
	chat := st.Chat
	if chat == 0 {
		chat = sender
	}

	switch {
	case st.Button != "":
		msg := st.Message
		if msg == "" {
			msg = "1"
		}
		return bot.ButtonPress{
			Sender:     sender,
			Chat:       chat,
			CallbackID: fmt.Sprintf("cb-%d", i+1),
			Message:    bot.MessageRef{Chat: chat, MessageID: msg},
			ButtonID:   st.Button,
		}
	case st.InlineQuery != nil:
		return bot.InlineQuery{Sender: sender, QueryID: fmt.Sprintf("q-%d", i+1), Text: *st.InlineQuery}
	case st.InlineChoice != "":
		return bot.InlineChoice{Sender: sender, ResultID: st.InlineChoice, Text: st.Query}
	default:
		return bot.Decode(sender, chat, st.Text)
	}
}
