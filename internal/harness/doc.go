// Package harness runs scripted conversations against the bot.
//
// A scenario seeds the list state, then delivers a sequence of inbound
// events to a real bot.Loop wired to fakes: an in-memory store that can be
// told to fail, a recording gateway, a fixed clock and sequential flow
// ids. The run is deterministic, so its transcript can be compared with a
// golden file.
//
// # Scenario Format
//
//	name: add_with_suggestion
//	description: "A near match is offered before a new product is added"
//	scope: shared            # or per_user
//	seed:
//	  lists: { shared: [milk] }
//	  vocabulary: [bread]
//	steps:
//	  - text: "➕ Додати товар"   # menu labels and /commands become menu presses
//	  - text: "bred"
//	    expect: { op: suggest, result: suggested }
//	  - button: "add_similar:bread"
//	    message: "2"
//	  - inline_query: "mi"
//	  - inline_choice: "new:milk"
//	    query: "milk"
//	  - text: "eggs"
//	    save_fails: true
//	    gateway_down: [send_choices]
//	expect:
//	  lists: { shared: [milk, bread] }
//	  vocabulary: [bread, milk]
//	  saves: 1
//
// Each step sets exactly one of text, button, inline_query or
// inline_choice. sender defaults to 1 and chat to the sender.
//
// # Golden Files
//
// RunWithGolden compares the transcript with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
