// Package middleware provides composable wrappers for session stores:
// encryption at rest and PII masking of persisted document content.
package middleware

import "github.com/quillflow/quill/pkg/ports"

// Middleware allows wrapping a SessionStore to add behavior.
type Middleware func(ports.SessionStore) ports.SessionStore
