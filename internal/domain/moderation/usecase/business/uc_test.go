package business

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Stam1n/telegram-bot/internal/domain/moderation/deps"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/entities"
	boterrors "github.com/Stam1n/telegram-bot/internal/domain/moderation/errors"
	"github.com/Stam1n/telegram-bot/internal/domain/moderation/repository/memory"
	"github.com/Stam1n/telegram-bot/internal/infrastructure/metrics"
)

const (
	testChat  int64 = -100777
	selfID    int64 = 1000
	ownerID   int64 = 1
	adminID   int64 = 2
	memberID  int64 = 3
	promoID   int64 = 500
	noticeTTL       = 5 * time.Second
)

type sentText struct {
	chatID   int64
	text     string
	keyboard *entities.Keyboard
}

type msgRef struct {
	chatID    int64
	messageID int
}

type fakeGateway struct {
	mu sync.Mutex

	self      entities.Identity
	selfErr   error
	members   map[int64]entities.Member
	memberErr error
	admins    []entities.Member
	adminsErr error
	profiles  map[int64]entities.Identity
	handles   map[string]entities.Identity
	deleteErr error
	sendErr   error

	deleted     []msgRef
	sent        []sentText
	memberCalls int
	nextID      int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		self: entities.Identity{ID: selfID, Username: "guard_bot", IsBot: true},
		members: map[int64]entities.Member{
			selfID:   {Identity: entities.Identity{ID: selfID}, Role: entities.RoleAdministrator, CanDeleteMessages: true},
			adminID:  {Identity: entities.Identity{ID: adminID}, Role: entities.RoleAdministrator},
			ownerID:  {Identity: entities.Identity{ID: ownerID}, Role: entities.RoleOwner},
			memberID: {Identity: entities.Identity{ID: memberID}, Role: entities.RoleMember},
		},
		profiles: map[int64]entities.Identity{},
		handles:  map[string]entities.Identity{},
		nextID:   9000,
	}
}

func (g *fakeGateway) Self(context.Context) (entities.Identity, error) {
	return g.self, g.selfErr
}

func (g *fakeGateway) Member(_ context.Context, _, userID int64) (entities.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.memberCalls++
	if g.memberErr != nil {
		return entities.Member{}, g.memberErr
	}
	m, ok := g.members[userID]
	if !ok {
		return entities.Member{Identity: entities.Identity{ID: userID}, Role: entities.RoleOther}, nil
	}
	return m, nil
}

func (g *fakeGateway) Administrators(context.Context, int64) ([]entities.Member, error) {
	return g.admins, g.adminsErr
}

func (g *fakeGateway) Profile(_ context.Context, id int64) (entities.Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.profiles[id]
	if !ok {
		return entities.Identity{}, boterrors.ErrMessageNotFound
	}
	return p, nil
}

func (g *fakeGateway) ResolveHandle(_ context.Context, handle string) (entities.Identity, error) {
	identity, ok := g.handles[handle]
	if !ok {
		return entities.Identity{}, boterrors.ErrHandleNotFound
	}
	return identity, nil
}

func (g *fakeGateway) SendText(_ context.Context, chatID int64, text string, keyboard *entities.Keyboard) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return 0, g.sendErr
	}
	g.sent = append(g.sent, sentText{chatID, text, keyboard})
	g.nextID++
	return g.nextID, nil
}

func (g *fakeGateway) EditText(context.Context, int64, int, string, *entities.Keyboard) error {
	return nil
}

func (g *fakeGateway) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deleteErr != nil {
		return g.deleteErr
	}
	g.deleted = append(g.deleted, msgRef{chatID, messageID})
	return nil
}

func (g *fakeGateway) AnswerCallback(context.Context, string, string) error {
	return nil
}

type scheduled struct {
	chatID    int64
	messageID int
	after     time.Duration
}

type fakeScheduler struct {
	mu    sync.Mutex
	calls []scheduled
}

func (s *fakeScheduler) Schedule(chatID int64, messageID int, after time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, scheduled{chatID, messageID, after})
}

type nopPersister struct{}

func (nopPersister) Load(context.Context) (map[int64]entities.ChatRecord, error) {
	return map[int64]entities.ChatRecord{}, nil
}

func (nopPersister) Save(context.Context, map[int64]entities.ChatRecord) error {
	return nil
}

type failingPersister struct{ nopPersister }

func (failingPersister) Save(context.Context, map[int64]entities.ChatRecord) error {
	return errors.New("read-only file system")
}

type fixture struct {
	uc        *UseCase
	gateway   *fakeGateway
	scheduler *fakeScheduler
	store     *memory.Store
	directory *memory.Directory
	metrics   *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithPersister(t, nopPersister{})
}

func newFixtureWithPersister(t *testing.T, p deps.Persister) *fixture {
	t.Helper()

	m := metrics.NewMetrics(prometheus.NewRegistry())
	f := &fixture{
		gateway:   newFakeGateway(),
		scheduler: &fakeScheduler{},
		store:     memory.NewStore(p, m, zerolog.Nop()),
		directory: memory.NewDirectory(),
		metrics:   m,
	}
	f.uc = NewUseCase(f.store, f.gateway, f.scheduler, f.directory, m, Options{
		OwnerID:   ownerID,
		NoticeTTL: noticeTTL,
	}, zerolog.Nop())
	f.uc.now = func() time.Time {
		return time.Date(2024, 3, 8, 12, 30, 0, 0, time.UTC)
	}
	return f
}

func identity(id int64, username string) entities.Identity {
	return entities.Identity{ID: id, Username: username}
}
