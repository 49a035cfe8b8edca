package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// InvitationStatus is the stored invitation state. Expiry is not a
// stored status: a pending invitation past its expires_at is treated
// as expired everywhere it is read.
type InvitationStatus = string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationCancelled InvitationStatus = "cancelled"
)

// MemberStatus is the team member activation state.
type MemberStatus = string

const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
)

// invitationTransitions is the allowed status graph. Both targets are
// terminal.
var invitationTransitions = map[InvitationStatus]map[InvitationStatus]struct{}{
	InvitationPending: {
		InvitationAccepted:  {},
		InvitationCancelled: {},
	},
}

// CanTransitionInvitation reports whether from -> to is a legal status
// change.
func CanTransitionInvitation(from, to InvitationStatus) bool {
	targets, ok := invitationTransitions[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// Partner is the owning tenant of a team. It is managed outside this
// core; the model exists for joins and notification display names.
type Partner struct {
	bun.BaseModel `bun:"table:partners,alias:ptr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	DisplayName   string     `bun:"display_name,notnull" json:"display_name,omitempty"`
	Status        string     `bun:"status,notnull" json:"status,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Role carries a named permission set. Permissions are persisted as a
// serialized JSON array of capability names; see PermissionSet for the
// defensive decode.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Permissions   string     `bun:"permissions,notnull,default:'[]'" json:"permissions,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// TeamMember is created only as the terminal effect of accepting an
// invitation. Identity is (partner_id, email).
type TeamMember struct {
	bun.BaseModel `bun:"table:team_members,alias:mbr"`
	ID            uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	PartnerID     uuid.UUID    `bun:"partner_id,notnull,type:uuid,unique:team_members_partner_email" json:"partner_id,omitempty"`
	RoleID        uuid.UUID    `bun:"role_id,notnull,type:uuid" json:"role_id,omitempty"`
	Role          *Role        `bun:"rel:belongs-to,join:role_id=id" json:"role,omitempty"`
	Email         string       `bun:"email,notnull,unique:team_members_partner_email" json:"email,omitempty"`
	Name          string       `bun:"name,notnull" json:"name,omitempty"`
	PasswordHash  string       `bun:"password_hash,notnull" json:"-"`
	Status        MemberStatus `bun:"status,notnull,default:'active'" json:"status,omitempty"`
	CreatedAt     *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Invitation identifies a prospective team member. The token is
// single-use and regenerated on resend. The store carries a partial
// unique index on (partner_id, email) WHERE status = 'pending', which
// is what makes concurrent creates for the same invitee resolve to one
// winner.
type Invitation struct {
	bun.BaseModel `bun:"table:invitations,alias:inv"`
	ID            uuid.UUID        `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	PartnerID     uuid.UUID        `bun:"partner_id,notnull,type:uuid" json:"partner_id,omitempty"`
	Partner       *Partner         `bun:"rel:belongs-to,join:partner_id=id" json:"partner,omitempty"`
	RoleID        uuid.UUID        `bun:"role_id,notnull,type:uuid" json:"role_id,omitempty"`
	Role          *Role            `bun:"rel:belongs-to,join:role_id=id" json:"role,omitempty"`
	Email         string           `bun:"email,notnull" json:"email,omitempty"`
	Name          string           `bun:"name,notnull" json:"name,omitempty"`
	Token         string           `bun:"token,notnull,unique" json:"-"`
	Status        InvitationStatus `bun:"status,notnull,default:'pending'" json:"status,omitempty"`
	InvitedBy     uuid.UUID        `bun:"invited_by,notnull,type:uuid" json:"invited_by,omitempty"`
	ExpiresAt     time.Time        `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	AcceptedAt    *time.Time       `bun:"accepted_at,nullzero" json:"accepted_at,omitempty"`
	CreatedAt     *time.Time       `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time       `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Expired reports the derived expiry condition at the given instant.
func (i *Invitation) Expired(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}

// Acceptable reports whether the invitation can still be accepted.
func (i *Invitation) Acceptable(now time.Time) bool {
	return i.Status == InvitationPending && !i.Expired(now)
}
