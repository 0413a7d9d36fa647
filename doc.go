/*
Package orca is the order intake flow of ORCA Orman Ürünleri, a wood packaging
and lumber supplier.

A customer picks a product category, answers the specification questions,
leaves contact details and chooses how the order is delivered: by email to the
sales team, as a prefilled WhatsApp message, or both. Photos and voice notes
can travel with the order.

# Concept

The Engine is a deterministic state machine. Every operation takes a
domain.State snapshot and returns a new one; the host owns persistence and
I/O. The same engine drives the terminal (pkg/runner), the widget HTTP API
(pkg/adapters/http) and the MCP server (pkg/adapters/mcp).

# Usage

	eng, err := orca.New(ctx, "", orca.WithOrderURL("http://localhost:8081/send-order"))
	if err != nil {
		log.Fatal(err)
	}

	state, _ := eng.Start(ctx, "session-1", "")
	for !state.Done() {
		actions, _, _ := eng.Render(ctx, state)
		show(actions)

		next, err := eng.Navigate(ctx, state, readLine())
		if next != nil {
			state = next
		}
		if err != nil {
			report(err)
		}
	}
*/
package orca
