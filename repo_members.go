package auth

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Members is the team member persistence surface.
type Members interface {
	repository.Repository[*TeamMember]

	ExistsByEmail(ctx context.Context, partnerID uuid.UUID, email string) (bool, error)

	GetByPartner(ctx context.Context, partnerID, memberID uuid.UUID) (*TeamMember, error)
	GetByPartnerTx(ctx context.Context, tx bun.IDB, partnerID, memberID uuid.UUID) (*TeamMember, error)

	SetStatus(ctx context.Context, partnerID, memberID uuid.UUID, status MemberStatus) (bool, error)
	SetRole(ctx context.Context, partnerID, memberID, roleID uuid.UUID) (bool, error)
}

type members struct {
	repository.Repository[*TeamMember]
	db *bun.DB
}

var (
	_ Members                            = (*members)(nil)
	_ repository.Repository[*TeamMember] = (*members)(nil)
)

func NewMembersRepository(db *bun.DB) Members {
	repo := repository.NewRepository[*TeamMember](db, repository.ModelHandlers[*TeamMember]{
		NewRecord: func() *TeamMember { return &TeamMember{} },
		GetID: func(m *TeamMember) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *TeamMember, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &members{
		Repository: repo,
		db:         db,
	}
}

func (r *members) ExistsByEmail(ctx context.Context, partnerID uuid.UUID, email string) (bool, error) {
	count, err := r.db.NewSelect().
		Model((*TeamMember)(nil)).
		Where("?TableAlias.partner_id = ?", partnerID).
		Where("?TableAlias.email = ?", email).
		Count(ctx)

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *members) GetByPartner(ctx context.Context, partnerID, memberID uuid.UUID) (*TeamMember, error) {
	return r.GetByPartnerTx(ctx, r.db, partnerID, memberID)
}

func (r *members) GetByPartnerTx(ctx context.Context, tx bun.IDB, partnerID, memberID uuid.UUID) (*TeamMember, error) {
	record := &TeamMember{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", memberID).
		Where("?TableAlias.partner_id = ?", partnerID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"member_id": memberID.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (r *members) SetStatus(ctx context.Context, partnerID, memberID uuid.UUID, status MemberStatus) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*TeamMember)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.id = ?", memberID).
		Where("?TableAlias.partner_id = ?", partnerID).
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

func (r *members) SetRole(ctx context.Context, partnerID, memberID, roleID uuid.UUID) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*TeamMember)(nil)).
		Set("role_id = ?", roleID).
		Set("updated_at = ?", time.Now()).
		Where("?TableAlias.id = ?", memberID).
		Where("?TableAlias.partner_id = ?", partnerID).
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
