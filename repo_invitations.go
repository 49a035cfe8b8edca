package auth

import (
	"context"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Invitations is the invitation persistence surface. The conditional
// updates are the concurrency anchor: MarkAccepted and Cancel are
// keyed on the pending status so concurrent callers resolve to one
// winner.
type Invitations interface {
	repository.Repository[*Invitation]

	CreatePending(ctx context.Context, invitation *Invitation, now time.Time) (*Invitation, error)

	GetPendingByID(ctx context.Context, partnerID, invitationID uuid.UUID) (*Invitation, error)
	GetPendingByIDTx(ctx context.Context, tx bun.IDB, partnerID, invitationID uuid.UUID) (*Invitation, error)

	GetAcceptableByToken(ctx context.Context, token string, now time.Time) (*Invitation, error)
	GetAcceptableByTokenTx(ctx context.Context, tx bun.IDB, token string, now time.Time) (*Invitation, error)

	HasPendingForEmail(ctx context.Context, partnerID uuid.UUID, email string, now time.Time) (bool, error)

	MarkAcceptedTx(ctx context.Context, tx bun.IDB, invitationID uuid.UUID, now time.Time) (bool, error)
	CancelPending(ctx context.Context, partnerID, invitationID uuid.UUID) (bool, error)
	RefreshToken(ctx context.Context, invitationID uuid.UUID, token string, expiresAt time.Time) (bool, error)
}

type invitations struct {
	repository.Repository[*Invitation]
	db *bun.DB
}

var (
	_ Invitations                        = (*invitations)(nil)
	_ repository.Repository[*Invitation] = (*invitations)(nil)
)

func NewInvitationsRepository(db *bun.DB) Invitations {
	repo := repository.NewRepository[*Invitation](db, repository.ModelHandlers[*Invitation]{
		NewRecord: func() *Invitation { return &Invitation{} },
		GetID: func(inv *Invitation) uuid.UUID {
			if inv == nil {
				return uuid.Nil
			}
			return inv.ID
		},
		SetID: func(inv *Invitation, id uuid.UUID) {
			if inv != nil {
				inv.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	return &invitations{
		Repository: repo,
		db:         db,
	}
}

// CreatePending inserts a new pending invitation. One pending row per
// (partner_id, email) is enforced by a partial unique index in the
// store; expired pending rows for the pair are cancelled first so they
// never block a re-invite. A constraint violation means a concurrent
// create won and reports ErrDuplicateInvitee.
func (r *invitations) CreatePending(ctx context.Context, invitation *Invitation, now time.Time) (*Invitation, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*Invitation)(nil)).
			Set("status = ?", InvitationCancelled).
			Set("updated_at = ?", now).
			Where("?TableAlias.partner_id = ?", invitation.PartnerID).
			Where("?TableAlias.email = ?", invitation.Email).
			Where("?TableAlias.status = ?", InvitationPending).
			Where("?TableAlias.expires_at <= ?", now).
			Exec(ctx)
		if err != nil {
			return err
		}

		_, err = tx.NewInsert().Model(invitation).Exec(ctx)
		return err
	})

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateInvitee
		}
		return nil, err
	}

	return invitation, nil
}

func (r *invitations) GetPendingByID(ctx context.Context, partnerID, invitationID uuid.UUID) (*Invitation, error) {
	return r.GetPendingByIDTx(ctx, r.db, partnerID, invitationID)
}

func (r *invitations) GetPendingByIDTx(ctx context.Context, tx bun.IDB, partnerID, invitationID uuid.UUID) (*Invitation, error) {
	record := &Invitation{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", invitationID).
		Where("?TableAlias.partner_id = ?", partnerID).
		Where("?TableAlias.status = ?", InvitationPending).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"invitation_id": invitationID.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (r *invitations) GetAcceptableByToken(ctx context.Context, token string, now time.Time) (*Invitation, error) {
	return r.GetAcceptableByTokenTx(ctx, r.db, token, now)
}

func (r *invitations) GetAcceptableByTokenTx(ctx context.Context, tx bun.IDB, token string, now time.Time) (*Invitation, error) {
	record := &Invitation{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Where("?TableAlias.status = ?", InvitationPending).
		Where("?TableAlias.expires_at > ?", now).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (r *invitations) HasPendingForEmail(ctx context.Context, partnerID uuid.UUID, email string, now time.Time) (bool, error) {
	count, err := r.db.NewSelect().
		Model((*Invitation)(nil)).
		Where("?TableAlias.partner_id = ?", partnerID).
		Where("?TableAlias.email = ?", email).
		Where("?TableAlias.status = ?", InvitationPending).
		Where("?TableAlias.expires_at > ?", now).
		Count(ctx)

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// MarkAcceptedTx flips pending -> accepted. It reports false when the
// row was not pending anymore, which is how a concurrent second accept
// loses.
func (r *invitations) MarkAcceptedTx(ctx context.Context, tx bun.IDB, invitationID uuid.UUID, now time.Time) (bool, error) {
	res, err := tx.NewUpdate().
		Model((*Invitation)(nil)).
		Set("status = ?", InvitationAccepted).
		Set("accepted_at = ?", now).
		Set("updated_at = ?", now).
		Where("?TableAlias.id = ?", invitationID).
		Where("?TableAlias.status = ?", InvitationPending).
		Where("?TableAlias.expires_at > ?", now).
		Exec(ctx)

	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

func (r *invitations) CancelPending(ctx context.Context, partnerID, invitationID uuid.UUID) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*Invitation)(nil)).
		Set("status = ?", InvitationCancelled).
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.id = ?", invitationID).
		Where("?TableAlias.partner_id = ?", partnerID).
		Where("?TableAlias.status = ?", InvitationPending).
		Exec(ctx)

	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

// isUniqueViolation matches the constraint error texts of the sqlite
// and postgres drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// RefreshToken swaps in a new single-use token and resets the expiry
// window. The previous token stops resolving immediately.
func (r *invitations) RefreshToken(ctx context.Context, invitationID uuid.UUID, token string, expiresAt time.Time) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*Invitation)(nil)).
		Set("token = ?", token).
		Set("expires_at = ?", expiresAt).
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.id = ?", invitationID).
		Where("?TableAlias.status = ?", InvitationPending).
		Exec(ctx)

	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}
