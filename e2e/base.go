package e2e

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"

	"moonhall/chat"
	"moonhall/docstore"
	"moonhall/follow"
	"moonhall/notify"
	"moonhall/presence"
	"moonhall/runtime"
	"moonhall/services"
)

// BaseSuite boots a full in-process deployment: one database, the shared
// collaborators, and one live session per participant.
type BaseSuite struct {
	suite.Suite
	Config   Config
	Log      *slog.Logger
	DB       *badger.DB
	Store    *docstore.BadgerStore
	Tracker  *presence.Tracker
	History  *chat.History
	Registry *follow.ScanRegistry
	Engine   *notify.Engine

	sessions map[string]*runtime.Session
}

func (s *BaseSuite) SetupSuite() {
	cfg, err := LoadConfig()
	s.Require().NoError(err)
	s.Config = cfg
	s.Log = logs.GetLoggerFromString(cfg.LogLevel)

	path := cfg.BadgerPath
	if path == "" {
		path = s.T().TempDir()
	}
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)
	s.DB = db

	s.Store = docstore.NewBadgerStore(db, s.Log)
	s.Tracker = presence.NewTracker(s.Store, s.Log, 0)
	s.History = chat.NewHistory(s.Store, s.Log, 0)
	s.Registry = follow.NewScanRegistry(s.Store, s.Log)
	s.Engine = notify.NewEngine(s.Store, s.Registry, s.Log)
	s.sessions = make(map[string]*runtime.Session)
}

func (s *BaseSuite) TearDownSuite() {
	for _, session := range s.sessions {
		session.Stop()
	}
	if s.DB != nil {
		s.Require().NoError(s.DB.Close())
	}
}

// Connect registers the user's profile and opens a live session for them.
func (s *BaseSuite) Connect(ctx context.Context, userID, displayName string) *runtime.Session {
	err := s.Store.Update(ctx, "users", userID, map[string]any{"displayName": displayName})
	s.Require().NoError(err)

	session := runtime.NewSession(s.Log, s.Store, s.Tracker, s.History, userID, 50*time.Millisecond, s.Engine)
	session.Start(ctx)
	s.sessions[userID] = session
	return session
}

// ServicesFor builds the command surface bound to one user's session.
func (s *BaseSuite) ServicesFor(session *runtime.Session) (*services.ChatService, *services.ForumService, *services.EffectService, *services.SocialService) {
	return services.NewChatService(s.Log, s.Store, s.History, session, session),
		services.NewForumService(s.Log, s.Store, s.Registry, session),
		services.NewEffectService(s.Log, s.Store),
		services.NewSocialService(s.Log, s.Tracker, session)
}

func (s *BaseSuite) Step(name string) {
	if s.Config.Colours {
		color.Cyan.Printf("--- %s ---\n", name)
		return
	}
	s.T().Logf("--- %s ---", name)
}
