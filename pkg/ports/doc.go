/*
Package ports defines the driven ports (interfaces) for the Quill engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various storage backends, analysis providers, and
signing/scheduling collaborators.

# Key Interfaces

  - SessionStore: Responsible for persisting and loading session checkpoints.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - TextExtractor: Turns uploaded bytes into analyzable text.
  - AnalysisProvider: Generates structured model responses for analysis prompts.
  - Signer / Scheduler: Downstream collaborators for the post-approval stages.
*/
package ports
