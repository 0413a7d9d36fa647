/*
Package ports defines the driven ports (interfaces) of the order flow.

These interfaces decouple the flow engine from storage backends and from the
external collaborators it talks to over HTTP.

# Key Interfaces

  - StateStore: Persists and loads session State.
  - ContactStore: Remembers the last contact details for autofill.
  - DistributedLocker: Serializes concurrent access to one session.
  - Classifier, OrderSender, LinkOpener: The external collaborators.
  - RateLimiter, Mailer: Used by the order intake server.
*/
package ports
