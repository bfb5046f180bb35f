/*
Package domain contains the core domain models and business logic for the Quill engine.

It defines the fundamental entities of the workflow, such as the Session, its
Stages, and the typed patches stage handlers emit. This package is kept pure and
free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Session: Captures the durable snapshot of one document approval flow.
  - Stage: One unit of work in the workflow graph (analyze, approval gate, signing, scheduling).
  - Patch: A partial state update produced by a stage handler and applied by the engine.
  - HumanInput: The payload supplied to resume a paused session.
  - RiskAssessment: The aggregate produced by the analysis pipeline.
*/
package domain
