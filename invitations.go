package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	// DefaultInvitationTTL is the invitation lifetime in days. Resend
	// restarts the window.
	DefaultInvitationTTL = 7

	// invitationTokenBytes sets the single-use token entropy: 32 bytes
	// hex encoded.
	invitationTokenBytes = 32

	acceptInvitePath = "/partner/accept-invite?token="
)

// InviteMemberMessage is the input for creating a team invitation.
type InviteMemberMessage struct {
	PartnerID uuid.UUID `json:"partner_id"`
	InvitedBy uuid.UUID `json:"invited_by"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	RoleID    uuid.UUID `json:"role_id"`
}

// Validate applies the field rules for an invitation request.
func (m InviteMemberMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&m.Name, validation.Required, validation.Length(1, 200)),
	)
}

// TeamManager drives the invitation lifecycle and team member admin
// operations. It holds no cross-request state; concurrency resolves at
// the store through conditional updates.
type TeamManager interface {
	InviteMember(ctx context.Context, msg InviteMemberMessage) (*Invitation, error)
	ResendInvitation(ctx context.Context, partnerID, invitationID uuid.UUID) (*Invitation, error)
	CancelInvitation(ctx context.Context, partnerID, invitationID uuid.UUID) error
	AcceptInvitation(ctx context.Context, token, password string) (*TeamMember, error)
	ToggleMemberStatus(ctx context.Context, partnerID, memberID, actingUserID uuid.UUID) (*TeamMember, error)
	UpdateMemberRole(ctx context.Context, partnerID, memberID, roleID, actingUserID uuid.UUID) (*TeamMember, error)
}

// TeamManagerImpl implements TeamManager over the repository manager
// and the notification collaborator.
type TeamManagerImpl struct {
	repo          RepositoryManager
	notifier      Notifier
	hasher        PasswordAuthenticator
	logger        Logger
	baseURL       string
	invitationTTL int
	now           func() time.Time
	newToken      func() (string, error)
}

// TeamManagerOption customizes TeamManager construction.
type TeamManagerOption func(*TeamManagerImpl)

// WithTeamClock injects a custom clock (useful for tests).
func WithTeamClock(clock func() time.Time) TeamManagerOption {
	return func(tm *TeamManagerImpl) {
		if clock != nil {
			tm.now = clock
		}
	}
}

// WithTeamLogger overrides the logger.
func WithTeamLogger(logger Logger) TeamManagerOption {
	return func(tm *TeamManagerImpl) {
		if logger != nil {
			tm.logger = logger
		}
	}
}

// WithInvitationTTL overrides the invitation lifetime in days.
func WithInvitationTTL(days int) TeamManagerOption {
	return func(tm *TeamManagerImpl) {
		if days > 0 {
			tm.invitationTTL = days
		}
	}
}

// WithInvitationTokenSource overrides the token generator (tests only).
func WithInvitationTokenSource(source func() (string, error)) TeamManagerOption {
	return func(tm *TeamManagerImpl) {
		if source != nil {
			tm.newToken = source
		}
	}
}

// NewTeamManager wires a TeamManager. All collaborators are explicit;
// nothing reaches into process globals.
func NewTeamManager(repo RepositoryManager, notifier Notifier, hasher PasswordAuthenticator, baseURL string, opts ...TeamManagerOption) *TeamManagerImpl {
	tm := &TeamManagerImpl{
		repo:          repo,
		notifier:      notifier,
		hasher:        hasher,
		logger:        defLogger{},
		baseURL:       strings.TrimRight(baseURL, "/"),
		invitationTTL: DefaultInvitationTTL,
		now:           time.Now,
		newToken:      newInvitationToken,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(tm)
		}
	}

	return tm
}

var _ TeamManager = (*TeamManagerImpl)(nil)

// InviteMember creates a pending invitation and sends the invite
// email. A failed send does not roll the invitation back; the created
// record is returned together with ErrNotificationFailed.
func (tm *TeamManagerImpl) InviteMember(ctx context.Context, msg InviteMemberMessage) (*Invitation, error) {
	if err := msg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid invitation request")
	}

	email := normalizeEmail(msg.Email)
	now := tm.now()

	exists, err := tm.repo.Members().ExistsByEmail(ctx, msg.PartnerID, email)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check team membership")
	}
	if exists {
		return nil, ErrDuplicateInvitee
	}

	pending, err := tm.repo.Invitations().HasPendingForEmail(ctx, msg.PartnerID, email, now)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check pending invitations")
	}
	if pending {
		return nil, ErrDuplicateInvitee
	}

	role, err := tm.repo.Roles().GetByID(ctx, msg.RoleID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrInvalidRole
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve role")
	}

	token, err := tm.newToken()
	if err != nil {
		return nil, err
	}

	invitation := &Invitation{
		ID:        uuid.New(),
		PartnerID: msg.PartnerID,
		RoleID:    msg.RoleID,
		Email:     email,
		Name:      msg.Name,
		Token:     token,
		Status:    InvitationPending,
		InvitedBy: msg.InvitedBy,
		ExpiresAt: now.Add(tm.invitationWindow()),
	}

	// The pending pre-checks above are advisory; the store's partial
	// unique index is what resolves a concurrent create to one winner.
	invitation, err = tm.repo.Invitations().CreatePending(ctx, invitation, now)
	if err != nil {
		if errors.Is(err, ErrDuplicateInvitee) {
			return nil, ErrDuplicateInvitee
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create invitation")
	}

	if err := tm.sendInvitation(ctx, invitation, role.Name); err != nil {
		return invitation, ErrNotificationFailed
	}

	return invitation, nil
}

// ResendInvitation regenerates the single-use token, restarts the
// expiry window, and re-sends the email. The previous token stops
// working.
func (tm *TeamManagerImpl) ResendInvitation(ctx context.Context, partnerID, invitationID uuid.UUID) (*Invitation, error) {
	invitation, err := tm.repo.Invitations().GetPendingByID(ctx, partnerID, invitationID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrInvitationNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load invitation")
	}

	token, err := tm.newToken()
	if err != nil {
		return nil, err
	}

	expiresAt := tm.now().Add(tm.invitationWindow())

	ok, err := tm.repo.Invitations().RefreshToken(ctx, invitation.ID, token, expiresAt)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to refresh invitation token")
	}
	if !ok {
		// Raced with an accept or cancel since the read above.
		return nil, ErrInvitationNotFound
	}

	invitation.Token = token
	invitation.ExpiresAt = expiresAt

	roleName := ""
	if role, err := tm.repo.Roles().GetByID(ctx, invitation.RoleID); err == nil {
		roleName = role.Name
	} else {
		tm.logger.Error("failed to resolve role name for invitation email %s: %v", invitation.ID.String(), err)
	}

	if err := tm.sendInvitation(ctx, invitation, roleName); err != nil {
		return invitation, ErrNotificationFailed
	}

	return invitation, nil
}

// CancelInvitation moves a pending invitation to cancelled. The token
// becomes permanently unusable.
func (tm *TeamManagerImpl) CancelInvitation(ctx context.Context, partnerID, invitationID uuid.UUID) error {
	ok, err := tm.repo.Invitations().CancelPending(ctx, partnerID, invitationID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to cancel invitation")
	}
	if !ok {
		return ErrInvitationNotFound
	}
	return nil
}

// AcceptInvitation redeems a token exactly once. The status flip is a
// conditional update keyed on the pending status; membership creation
// only proceeds when that update wins, so a concurrent second accept
// fails instead of minting a duplicate member.
func (tm *TeamManagerImpl) AcceptInvitation(ctx context.Context, token, password string) (*TeamMember, error) {
	now := tm.now()

	invitation, err := tm.repo.Invitations().GetAcceptableByToken(ctx, token, now)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrInvitationInvalid
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up invitation")
	}

	hash, err := tm.hasher.HashPassword(password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
	}

	member := &TeamMember{
		PartnerID:    invitation.PartnerID,
		RoleID:       invitation.RoleID,
		Email:        invitation.Email,
		Name:         invitation.Name,
		PasswordHash: hash,
		Status:       MemberActive,
	}

	if id, err := hashid.NewUUID(memberIdentity(invitation.PartnerID, invitation.Email)); err == nil {
		member.ID = id
	} else {
		member.ID = uuid.New()
	}

	err = tm.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		won, err := tm.repo.Invitations().MarkAcceptedTx(ctx, tx, invitation.ID, now)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark invitation accepted")
		}
		if !won {
			return ErrInvitationInvalid
		}

		if member, err = tm.repo.Members().CreateTx(ctx, tx, member); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create team member")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "invitation acceptance failed")
	}

	return member, nil
}

// ToggleMemberStatus flips a member between active and inactive.
// Members cannot deactivate themselves.
func (tm *TeamManagerImpl) ToggleMemberStatus(ctx context.Context, partnerID, memberID, actingUserID uuid.UUID) (*TeamMember, error) {
	if memberID == actingUserID {
		return nil, ErrSelfActionForbidden
	}

	member, err := tm.repo.Members().GetByPartner(ctx, partnerID, memberID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrMemberNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load team member")
	}

	next := MemberInactive
	if member.Status == MemberInactive {
		next = MemberActive
	}

	ok, err := tm.repo.Members().SetStatus(ctx, partnerID, memberID, next)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update member status")
	}
	if !ok {
		return nil, ErrMemberNotFound
	}

	member.Status = next
	return member, nil
}

// UpdateMemberRole reassigns a member's role. Members cannot change
// their own role.
func (tm *TeamManagerImpl) UpdateMemberRole(ctx context.Context, partnerID, memberID, roleID, actingUserID uuid.UUID) (*TeamMember, error) {
	if memberID == actingUserID {
		return nil, ErrSelfActionForbidden
	}

	if _, err := tm.repo.Roles().GetByID(ctx, roleID); err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrInvalidRole
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve role")
	}

	member, err := tm.repo.Members().GetByPartner(ctx, partnerID, memberID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrMemberNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load team member")
	}

	ok, err := tm.repo.Members().SetRole(ctx, partnerID, memberID, roleID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update member role")
	}
	if !ok {
		return nil, ErrMemberNotFound
	}

	member.RoleID = roleID
	return member, nil
}

// AcceptInviteLink builds the link embedded in the invitation email.
func (tm *TeamManagerImpl) AcceptInviteLink(token string) string {
	return tm.baseURL + acceptInvitePath + token
}

func (tm *TeamManagerImpl) invitationWindow() time.Duration {
	return time.Duration(tm.invitationTTL) * 24 * time.Hour
}

func (tm *TeamManagerImpl) sendInvitation(ctx context.Context, invitation *Invitation, roleName string) error {
	partnerName := ""
	if partner, err := tm.repo.Partners().GetByID(ctx, invitation.PartnerID); err == nil {
		partnerName = partner.DisplayName
	} else {
		tm.logger.Error("failed to resolve partner name for invitation email %s: %v", invitation.ID.String(), err)
	}

	payload := NotificationPayload{
		ToEmail:     invitation.Email,
		ToName:      invitation.Name,
		PartnerName: partnerName,
		InviteLink:  tm.AcceptInviteLink(invitation.Token),
		RoleName:    roleName,
	}

	if err := tm.notifier.SendTeamInvitationEmail(ctx, payload); err != nil {
		tm.logger.Error("failed to send invitation email for %s: %v", invitation.ID.String(), err)
		return err
	}

	return nil
}

// newInvitationToken draws 256 bits from the process CSPRNG and hex
// encodes them.
func newInvitationToken() (string, error) {
	buf := make([]byte, invitationTokenBytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate invitation token")
	}
	return hex.EncodeToString(buf), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func memberIdentity(partnerID uuid.UUID, email string) string {
	return fmt.Sprintf("%s:%s", partnerID.String(), email)
}
