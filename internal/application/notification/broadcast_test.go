package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ngo-pm/backend/internal/domain/identity"
	domain "github.com/ngo-pm/backend/internal/domain/notification"
	"github.com/ngo-pm/backend/internal/domain/project"
	"github.com/ngo-pm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockDirectory is a mock implementation of MemberDirectory
type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) ListMembers(ctx context.Context, orgID uuid.UUID) ([]*identity.User, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.User), args.Error(1)
}

// mockOrgs is a mock implementation of OrganizationLookup
type mockOrgs struct {
	mock.Mock
}

func (m *mockOrgs) FindByID(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Organization), args.Error(1)
}

// stubComposer renders notices into a predictable message
type stubComposer struct {
	failFor string
	mu      sync.Mutex
	notices []OverdueNotice
}

func (c *stubComposer) ComposeOverdue(n OverdueNotice) (domain.Message, error) {
	c.mu.Lock()
	c.notices = append(c.notices, n)
	c.mu.Unlock()
	if n.Recipient.Address == c.failFor {
		return domain.Message{}, errors.New("template error")
	}
	return domain.Message{
		To:      n.Recipient,
		Subject: fmt.Sprintf("%s is %d days overdue", n.ProjectName, n.DaysOverdue),
		HTML:    "<p>" + n.FirstName + "</p>",
		Text:    n.FirstName,
	}, nil
}

// recordingGateway records sends and fails for configured recipients
type recordingGateway struct {
	mu      sync.Mutex
	sent    []domain.Message
	fail    map[string]error
	panicOn string
}

func (g *recordingGateway) Send(_ context.Context, msg domain.Message) error {
	if msg.To.Address == g.panicOn {
		panic("provider sdk bug")
	}
	if err, ok := g.fail[msg.To.Address]; ok {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, msg)
	return nil
}

func newMember(orgID uuid.UUID, email, first string) *identity.User {
	return &identity.User{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Email:            email,
		FirstName:        first,
		Role:             identity.RoleOfficer,
		Active:           true,
	}
}

func newOverdueProject(orgID uuid.UUID) *project.Project {
	deadline := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	days := -10
	return &project.Project{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             "Mobile Clinic",
		Status:           project.StatusOverdue,
		Deadline:         &deadline,
		DaysLeft:         &days,
		IsOverdue:        true,
		Progress:         70,
	}
}

func TestBroadcastNotifier_SendsOneMessagePerMemberWithEmail(t *testing.T) {
	orgID := uuid.New()
	p := newOverdueProject(orgID)
	directory := new(mockDirectory)
	orgs := new(mockOrgs)
	directory.On("ListMembers", mock.Anything, orgID).Return([]*identity.User{
		newMember(orgID, "admin@hope.org", "Grace"),
		newMember(orgID, "officer@hope.org", "Peter"),
		newMember(orgID, "", "NoEmail"),
		newMember(orgID, "   ", "Blank"),
	}, nil)
	orgs.On("FindByID", mock.Anything, orgID).Return(&identity.Organization{Name: "Hope Foundation"}, nil)
	composer := &stubComposer{}
	gateway := &recordingGateway{}

	notifier := NewBroadcastNotifier(directory, orgs, composer, gateway, zap.NewNop(), DefaultBroadcastConfig())
	result, err := notifier.NotifyOverdue(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, domain.FanOutResult{Recipients: 2, Delivered: 2, Skipped: 2}, result)
	assert.Len(t, gateway.sent, 2)

	require.Len(t, composer.notices, 2)
	for _, n := range composer.notices {
		assert.Equal(t, "Mobile Clinic", n.ProjectName)
		assert.Equal(t, "Hope Foundation", n.OrganizationName)
		assert.Equal(t, 10, n.DaysOverdue)
		assert.Equal(t, 70, n.Progress)
		assert.Equal(t, *p.Deadline, n.Deadline)
	}
	directory.AssertExpectations(t)
}

func TestBroadcastNotifier_FailuresAreIsolated(t *testing.T) {
	orgID := uuid.New()
	directory := new(mockDirectory)
	directory.On("ListMembers", mock.Anything, orgID).Return([]*identity.User{
		newMember(orgID, "a@hope.org", "A"),
		newMember(orgID, "b@hope.org", "B"),
		newMember(orgID, "c@hope.org", "C"),
		newMember(orgID, "d@hope.org", "D"),
	}, nil)
	gateway := &recordingGateway{
		fail:    map[string]error{"b@hope.org": errors.New("550 mailbox unavailable")},
		panicOn: "c@hope.org",
	}

	notifier := NewBroadcastNotifier(directory, nil, &stubComposer{}, gateway, zap.NewNop(), DefaultBroadcastConfig())
	result, err := notifier.NotifyOverdue(context.Background(), newOverdueProject(orgID))

	require.NoError(t, err)
	assert.Equal(t, 4, result.Recipients)
	assert.Equal(t, 2, result.Delivered)
	assert.Equal(t, 2, result.Failed)

	var got []string
	for _, m := range gateway.sent {
		got = append(got, m.To.Address)
	}
	assert.ElementsMatch(t, []string{"a@hope.org", "d@hope.org"}, got)
}

func TestBroadcastNotifier_ComposeFailureCountsAsFailed(t *testing.T) {
	orgID := uuid.New()
	directory := new(mockDirectory)
	directory.On("ListMembers", mock.Anything, orgID).Return([]*identity.User{
		newMember(orgID, "a@hope.org", "A"),
		newMember(orgID, "b@hope.org", "B"),
	}, nil)
	gateway := &recordingGateway{}

	notifier := NewBroadcastNotifier(directory, nil, &stubComposer{failFor: "a@hope.org"}, gateway, zap.NewNop(), DefaultBroadcastConfig())
	result, err := notifier.NotifyOverdue(context.Background(), newOverdueProject(orgID))

	require.NoError(t, err)
	assert.Equal(t, domain.FanOutResult{Recipients: 2, Delivered: 1, Failed: 1}, result)
}

func TestBroadcastNotifier_MemberLookupFailure(t *testing.T) {
	orgID := uuid.New()
	directory := new(mockDirectory)
	directory.On("ListMembers", mock.Anything, orgID).Return(nil, errors.New("db down"))
	gateway := &recordingGateway{}

	notifier := NewBroadcastNotifier(directory, nil, &stubComposer{}, gateway, zap.NewNop(), DefaultBroadcastConfig())
	_, err := notifier.NotifyOverdue(context.Background(), newOverdueProject(orgID))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Empty(t, gateway.sent)
}

func TestBroadcastNotifier_OrganizationLookupFailureIsTolerated(t *testing.T) {
	orgID := uuid.New()
	directory := new(mockDirectory)
	orgs := new(mockOrgs)
	directory.On("ListMembers", mock.Anything, orgID).Return([]*identity.User{newMember(orgID, "a@hope.org", "A")}, nil)
	orgs.On("FindByID", mock.Anything, orgID).Return(nil, shared.ErrNotFound)
	composer := &stubComposer{}

	notifier := NewBroadcastNotifier(directory, orgs, composer, &recordingGateway{}, zap.NewNop(), DefaultBroadcastConfig())
	result, err := notifier.NotifyOverdue(context.Background(), newOverdueProject(orgID))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Delivered)
	require.Len(t, composer.notices, 1)
	assert.Empty(t, composer.notices[0].OrganizationName)
}

// barrierGateway only lets sends complete once n of them are in flight
type barrierGateway struct {
	n       int32
	started atomic.Int32
	all     chan struct{}
	once    sync.Once
}

func (g *barrierGateway) Send(ctx context.Context, _ domain.Message) error {
	if g.started.Add(1) == g.n {
		g.once.Do(func() { close(g.all) })
	}
	select {
	case <-g.all:
		return nil
	case <-time.After(2 * time.Second):
		return errors.New("sends were not concurrent")
	}
}

func TestBroadcastNotifier_DispatchesConcurrently(t *testing.T) {
	orgID := uuid.New()
	members := make([]*identity.User, 5)
	for i := range members {
		members[i] = newMember(orgID, fmt.Sprintf("m%d@hope.org", i), "M")
	}
	directory := new(mockDirectory)
	directory.On("ListMembers", mock.Anything, orgID).Return(members, nil)
	gateway := &barrierGateway{n: 5, all: make(chan struct{})}

	notifier := NewBroadcastNotifier(directory, nil, &stubComposer{}, gateway, zap.NewNop(), BroadcastConfig{MaxConcurrency: 5})
	result, err := notifier.NotifyOverdue(context.Background(), newOverdueProject(orgID))

	require.NoError(t, err)
	assert.Equal(t, 5, result.Delivered)
	assert.Equal(t, 0, result.Failed)
}
