package auth_test

import (
	"context"
	"database/sql"
	"time"

	auth "github.com/verifid/go-partner-auth"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockRepositoryManager implements auth.RepositoryManager. RunInTx
// executes the given function against a zero bun.Tx and propagates its
// error, so conditional-update outcomes flow through the service.
type MockRepositoryManager struct {
	mock.Mock
	invitations *MockInvitations
	members     *MockMembers
	roles       *MockRoles
	partners    *MockPartners
}

func newMockRepositoryManager() *MockRepositoryManager {
	return &MockRepositoryManager{
		invitations: &MockInvitations{},
		members:     &MockMembers{},
		roles:       &MockRoles{},
		partners:    &MockPartners{},
	}
}

func (m *MockRepositoryManager) Invitations() auth.Invitations { return m.invitations }
func (m *MockRepositoryManager) Members() auth.Members         { return m.members }
func (m *MockRepositoryManager) Roles() auth.Roles             { return m.roles }
func (m *MockRepositoryManager) Partners() auth.Partners       { return m.partners }

func (m *MockRepositoryManager) Validate() error { return nil }
func (m *MockRepositoryManager) MustValidate()   {}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	var tx bun.Tx
	return f(ctx, tx)
}

// MockInvitations implements auth.Invitations. The embedded interface
// covers the generic repository surface; only the methods the service
// touches are mocked.
type MockInvitations struct {
	mock.Mock
	auth.Invitations
}

// CreatePending echoes the input record when the expectation returns
// (nil, nil), mirroring how the real repository hands the persisted
// record back.
func (m *MockInvitations) CreatePending(ctx context.Context, record *auth.Invitation, now time.Time) (*auth.Invitation, error) {
	args := m.Called(ctx, record, now)
	if args.Get(0) == nil {
		if args.Error(1) == nil {
			return record, nil
		}
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Invitation), args.Error(1)
}

func (m *MockInvitations) GetPendingByID(ctx context.Context, partnerID, invitationID uuid.UUID) (*auth.Invitation, error) {
	args := m.Called(ctx, partnerID, invitationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Invitation), args.Error(1)
}

func (m *MockInvitations) GetAcceptableByToken(ctx context.Context, token string, now time.Time) (*auth.Invitation, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Invitation), args.Error(1)
}

func (m *MockInvitations) HasPendingForEmail(ctx context.Context, partnerID uuid.UUID, email string, now time.Time) (bool, error) {
	args := m.Called(ctx, partnerID, email, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvitations) MarkAcceptedTx(ctx context.Context, tx bun.IDB, invitationID uuid.UUID, now time.Time) (bool, error) {
	args := m.Called(ctx, tx, invitationID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvitations) CancelPending(ctx context.Context, partnerID, invitationID uuid.UUID) (bool, error) {
	args := m.Called(ctx, partnerID, invitationID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvitations) RefreshToken(ctx context.Context, invitationID uuid.UUID, token string, expiresAt time.Time) (bool, error) {
	args := m.Called(ctx, invitationID, token, expiresAt)
	return args.Bool(0), args.Error(1)
}

// MockMembers implements auth.Members.
type MockMembers struct {
	mock.Mock
	auth.Members
}

func (m *MockMembers) ExistsByEmail(ctx context.Context, partnerID uuid.UUID, email string) (bool, error) {
	args := m.Called(ctx, partnerID, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembers) GetByPartner(ctx context.Context, partnerID, memberID uuid.UUID) (*auth.TeamMember, error) {
	args := m.Called(ctx, partnerID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.TeamMember), args.Error(1)
}

// CreateTx echoes the input record when the expectation returns (nil,
// nil), same convention as MockInvitations.Create.
func (m *MockMembers) CreateTx(ctx context.Context, tx bun.IDB, record *auth.TeamMember, criteria ...repository.InsertCriteria) (*auth.TeamMember, error) {
	args := m.Called(ctx, tx, record)
	if args.Get(0) == nil {
		if args.Error(1) == nil {
			return record, nil
		}
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.TeamMember), args.Error(1)
}

func (m *MockMembers) SetStatus(ctx context.Context, partnerID, memberID uuid.UUID, status auth.MemberStatus) (bool, error) {
	args := m.Called(ctx, partnerID, memberID, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembers) SetRole(ctx context.Context, partnerID, memberID, roleID uuid.UUID) (bool, error) {
	args := m.Called(ctx, partnerID, memberID, roleID)
	return args.Bool(0), args.Error(1)
}

// MockRoles implements auth.Roles.
type MockRoles struct {
	mock.Mock
	auth.Roles
}

func (m *MockRoles) GetByID(ctx context.Context, roleID uuid.UUID) (*auth.Role, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Role), args.Error(1)
}

// MockPartners implements auth.Partners.
type MockPartners struct {
	mock.Mock
	auth.Partners
}

func (m *MockPartners) GetByID(ctx context.Context, partnerID uuid.UUID) (*auth.Partner, error) {
	args := m.Called(ctx, partnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Partner), args.Error(1)
}

// MockNotifier implements auth.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendTeamInvitationEmail(ctx context.Context, payload auth.NotificationPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}
