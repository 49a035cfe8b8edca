package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Invitations() Invitations
	Members() Members
	Roles() Roles
	Partners() Partners
}

// Roles resolves role records for permission checks and invitations.
type Roles interface {
	GetByID(ctx context.Context, roleID uuid.UUID) (*Role, error)
}

// Partners resolves partner records for notification display names.
type Partners interface {
	GetByID(ctx context.Context, partnerID uuid.UUID) (*Partner, error)
}

type roles struct {
	repository.Repository[*Role]
	db *bun.DB
}

func NewRolesRepository(db *bun.DB) Roles {
	repo := repository.NewRepository[*Role](db, repository.ModelHandlers[*Role]{
		NewRecord: func() *Role { return &Role{} },
		GetID: func(r *Role) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *Role, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})
	return &roles{Repository: repo, db: db}
}

func (r *roles) GetByID(ctx context.Context, roleID uuid.UUID) (*Role, error) {
	record := &Role{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", roleID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"role_id": roleID.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

type partners struct {
	repository.Repository[*Partner]
	db *bun.DB
}

func NewPartnersRepository(db *bun.DB) Partners {
	repo := repository.NewRepository[*Partner](db, repository.ModelHandlers[*Partner]{
		NewRecord: func() *Partner { return &Partner{} },
		GetID: func(p *Partner) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Partner, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})
	return &partners{Repository: repo, db: db}
}

func (r *partners) GetByID(ctx context.Context, partnerID uuid.UUID) (*Partner, error) {
	record := &Partner{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", partnerID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"partner_id": partnerID.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

type mngr struct {
	db          *bun.DB
	invitations Invitations
	members     Members
	roles       Roles
	partners    Partners
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:          db,
		invitations: NewInvitationsRepository(db),
		members:     NewMembersRepository(db),
		roles:       NewRolesRepository(db),
		partners:    NewPartnersRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.invitations == nil {
		return errors.New("repository invitations should be initialized")
	}

	if m.members == nil {
		return errors.New("repository members should be initialized")
	}

	if m.roles == nil {
		return errors.New("repository roles should be initialized")
	}

	if m.partners == nil {
		return errors.New("repository partners should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Invitations() Invitations {
	return m.invitations
}

func (m mngr) Members() Members {
	return m.members
}

func (m mngr) Roles() Roles {
	return m.roles
}

func (m mngr) Partners() Partners {
	return m.partners
}
