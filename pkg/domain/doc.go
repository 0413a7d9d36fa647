/*
Package domain contains the core models of the ORCA order flow.

It defines the order draft, the product catalog entries and the session
state walked by the flow engine. The package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Category: A product family with its sub-types, standard sizes and export flag.
  - Draft: The order being assembled (product, contact, timeline, attachments).
  - State: The runtime snapshot of a session (Screen, Draft, History, Outcome).
  - ActionRequest: A structural representation of what the host should render or do.
*/
package domain
