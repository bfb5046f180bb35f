/*
Package quill is a durable document-approval workflow engine: a document is
analyzed, a human approves or rejects it, then downstream actions (signing,
scheduling) run in sequence, with the ability to pause indefinitely awaiting
human input and resume later from exactly where it left off.

It separates the workflow graph (Logic) from the session snapshot (State) and
external collaborators (Signing, Scheduling, Analysis). The engine manages
stage transitions, checkpointing, and per-session serialization, while your
application manages transport and authentication. This Hexagonal Architecture
allows Quill to be embedded in any interface: CLI, HTTP Server, or AI Agent
infrastructure.

# Key Features

  - Durable Execution: interrupt points checkpoint the session; resume is a
    fresh call against the stored snapshot, surviving process restarts.
  - Memoized Analysis: a content-addressed result cache with singleflight
    deduplication prevents redundant analysis of identical documents.
  - Hexagonal Architecture: core logic is decoupled from adapters
    (Storage, Transport, Providers).
  - Strict Transitions: the stage graph is validated at startup and every
    conditional edge is total.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/quillflow/quill"
	)

	func main() {
		engine, err := quill.New()
		if err != nil {
			log.Fatal(err)
		}

		view, err := engine.Start(context.Background(), quill.StartRequest{
			UserID:      "user-1",
			Filename:    "contract.txt",
			ContentType: "text/plain",
			Document:    []byte("Agreement between the parties..."),
		})
		if err != nil {
			log.Fatal(err)
		}

		// view.AwaitingInput is true: the session is paused for approval.
		_ = view
	}
*/
package quill
