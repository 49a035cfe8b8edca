// Package auth implements the security core of the partner identity
// verification backend: encrypted verification links, signed session
// tokens, the team invitation lifecycle, and role permission checks.
//
// Verification links:
//   - LinkCodec seals an opaque verification id into a URL-safe token
//     using AES-256-GCM with a key derived from a configured passphrase.
//     Any tampering or malformed input surfaces as a single generic
//     ErrLinkTokenInvalid so callers cannot probe which check failed.
//
// Sessions:
//   - TokenService issues HS256 JWTs with a 24 hour lifetime and
//     verifies them statelessly. Verification failures are uniform:
//     malformed, forged, and expired tokens all report ErrTokenInvalid.
//
// Team invitations:
//   - TeamManager drives invitations from creation through resend,
//     cancel, and accept. Acceptance is exactly-once: the status flip is
//     a conditional update keyed on the pending status, and membership
//     creation only proceeds when that update wins. Expiry is derived
//     from the stored timestamp at read time, never swept.
//
// Permissions:
//   - Role permission sets are stored serialized and decoded
//     defensively; malformed data resolves to no permissions rather
//     than an error. The "all" capability grants everything.
//
// Persistence and outbound email are consumed through interfaces; every
// component receives its collaborators at construction.
package auth
