/*
Package runner drives the order flow in a terminal or over JSON lines.

It is the bridge between the Engine and a person typing: it renders the
current screen, reads one line, applies it and saves the new state. Slash
commands cover what a widget would do with buttons.

# Key Components

  - Runner: the Render, Input, Navigate and Save loop.
  - IOHandler: the interaction mode (TextHandler for people, JSONHandler for programs).
  - Commands: /photo, /voice, /remove, /search and /help.
  - SignalManager: turns Ctrl+C into a context cancellation.

# Usage

	r := runner.NewRunner(
		runner.WithEngine(engine),
		runner.WithStore(store),
		runner.WithSessionID("cli"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)
	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
