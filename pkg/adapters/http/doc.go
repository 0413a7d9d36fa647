/*
Package http exposes the order flow as a session based JSON API for the
website widget.

A client creates a session with POST /sessions and receives a JWT bound to
that session id. Every /sessions/{id} route requires the token as a bearer
credential. Changes are streamed to subscribers of /sessions/{id}/events as
Server-Sent Events carrying domain.StateDiff payloads.

The API is described by the embedded OpenAPI document served at /openapi.yaml.
*/
package http
