package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidLinkToken    = "INVALID_LINK_TOKEN"
	textCodeInvalidSessionToken = "INVALID_SESSION_TOKEN"
	textCodeUnauthenticated     = "UNAUTHENTICATED"
	textCodeDuplicateInvitee    = "DUPLICATE_INVITEE"
	textCodeInvitationNotFound  = "INVITATION_NOT_FOUND"
	textCodeInvitationInvalid   = "INVITATION_EXPIRED_OR_INVALID"
	textCodeInvalidRole         = "INVALID_ROLE"
	textCodeSelfActionForbidden = "SELF_ACTION_FORBIDDEN"
	textCodeNotificationFailed  = "NOTIFICATION_FAILED"
	textCodeMemberNotFound      = "MEMBER_NOT_FOUND"
)

// ErrLinkTokenInvalid is the only error LinkCodec surfaces for a bad
// token. Malformed base64, truncated payloads, and failed tag checks
// all report this value so callers cannot tell them apart.
var ErrLinkTokenInvalid = goerrors.New("invalid or corrupted link", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidLinkToken).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenInvalid is the uniform session token verification failure.
// It covers malformed, forged, and expired tokens alike.
var ErrTokenInvalid = goerrors.New("invalid session token", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidSessionToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnauthenticated is returned when a request carries no usable
// bearer credential.
var ErrUnauthenticated = goerrors.New("authentication required", goerrors.CategoryAuth).
	WithTextCode(textCodeUnauthenticated).
	WithCode(goerrors.CodeUnauthorized)

// ErrDuplicateInvitee is returned when the invitee email already maps
// to a team member or to a pending, unexpired invitation under the
// same partner.
var ErrDuplicateInvitee = goerrors.New("email already invited or a member of this team", goerrors.CategoryConflict).
	WithTextCode(textCodeDuplicateInvitee).
	WithCode(goerrors.CodeConflict)

// ErrInvitationNotFound is returned when no pending invitation matches
// the given id under the partner.
var ErrInvitationNotFound = goerrors.New("invitation not found", goerrors.CategoryNotFound).
	WithTextCode(textCodeInvitationNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrInvitationInvalid is returned on accept when the token does not
// resolve to a pending, unexpired invitation. Cancelled, already
// accepted, expired, and unknown tokens are indistinguishable.
var ErrInvitationInvalid = goerrors.New("invitation is invalid or has expired", goerrors.CategoryValidation).
	WithTextCode(textCodeInvitationInvalid).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidRole is returned when a role id does not resolve.
var ErrInvalidRole = goerrors.New("role does not exist", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidRole).
	WithCode(goerrors.CodeBadRequest)

// ErrSelfActionForbidden is returned when a user tries to deactivate
// themselves or change their own role.
var ErrSelfActionForbidden = goerrors.New("cannot perform this action on your own account", goerrors.CategoryValidation).
	WithTextCode(textCodeSelfActionForbidden).
	WithCode(goerrors.CodeBadRequest)

// ErrNotificationFailed reports a failed invitation email. It is a
// degraded success: the invitation was created or refreshed before the
// send was attempted and remains valid.
var ErrNotificationFailed = goerrors.New("invitation saved but the email could not be sent", goerrors.CategoryOperation).
	WithTextCode(textCodeNotificationFailed)

// ErrMemberNotFound is returned when the target team member does not
// exist under the partner.
var ErrMemberNotFound = goerrors.New("team member not found", goerrors.CategoryNotFound).
	WithTextCode(textCodeMemberNotFound).
	WithCode(goerrors.CodeNotFound)
