package notify

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"moonhall/mocks"
)

func Test_Consume_Surfaces_Registry_Failures(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	registry := mocks.NewMockFollowerRegistry(ctrl)
	engine := NewEngine(store, registry, logs.GetLoggerFromLevel(slog.LevelDebug))

	registry.EXPECT().
		FollowersOf(gomock.Any(), "night-shift").
		Return(nil, fmt.Errorf("index unavailable"))

	err := engine.Consume(context.Background(), reply("night-shift", "luna", time.Now()))
	req.ErrorContains(err, "index unavailable")
}

func Test_Consume_Writes_One_Notification_Per_Follower(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	registry := mocks.NewMockFollowerRegistry(ctrl)
	engine := NewEngine(store, registry, logs.GetLoggerFromLevel(slog.LevelDebug))

	registry.EXPECT().
		FollowersOf(gomock.Any(), "night-shift").
		Return([]string{"luna", "ondine", "severin"}, nil)
	// The actor is filtered out before any write happens
	store.EXPECT().
		Update(gomock.Any(), "notifications", gomock.Any(), gomock.Any()).
		Return(nil).
		Times(2)

	err := engine.Consume(context.Background(), reply("night-shift", "luna", time.Now()))
	req.NoError(err)
}
