package e2e

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"moonhall/domain"
	"moonhall/services"
)

type testSocialFlowSuite struct {
	BaseSuite
}

func TestSocialFlowSuite(t *testing.T) {
	suite.Run(t, &testSocialFlowSuite{})
}

func (s *testSocialFlowSuite) TestFullSocialFlow() {
	ctx := context.Background()

	luna := s.Connect(ctx, "luna", "Luna")
	severin := s.Connect(ctx, "severin", "Severin")
	lunaChat, lunaForum, lunaEffects, lunaSocial := s.ServicesFor(luna)
	_, sevForum, _, _ := s.ServicesFor(severin)

	// --- STEP 1: PRESENCE ---
	s.Step("Both users appear in the online roster")
	s.Eventually(func() bool {
		roster, err := lunaSocial.OnlineRoster(ctx)
		return err == nil && len(roster) == 2
	}, 5*time.Second, 100*time.Millisecond, "Roster never showed both users")

	// --- STEP 2: INVISIBILITY ---
	s.Step("Luna drinks an invisibility potion and vanishes")
	s.Require().NoError(lunaEffects.Drink(ctx, services.DrinkPotionCommand{UserID: "luna", Effect: domain.EffectInvisible}))
	roster, err := lunaSocial.OnlineRoster(ctx)
	s.Require().NoError(err)
	s.Require().Len(roster, 1)
	s.Require().Equal("severin", roster[0].ID)

	// --- STEP 3: FORUM & NOTIFICATION PUSH ---
	s.Step("A reply on a followed topic lands in the follower's live feed")
	topicID, err := lunaForum.CreateTopic(ctx, services.CreateTopicCommand{
		Forum: "alchemy", Title: "Moon dust recipes", AuthorID: "luna", AuthorName: "Luna", Content: "share yours",
	})
	s.Require().NoError(err)
	s.Require().NoError(sevForum.FollowTopic(ctx, "severin", "alchemy", topicID, "Moon dust recipes"))

	_, err = lunaForum.Reply(ctx, services.ReplyCommand{
		Forum: "alchemy", TopicID: topicID, TopicTitle: "Moon dust recipes",
		AuthorID: "luna", AuthorName: "Luna", Content: "mine uses silver thistle",
	})
	s.Require().NoError(err)

	s.Eventually(func() bool {
		return severin.Feed().Unread() == 1
	}, 5*time.Second, 100*time.Millisecond, "Reply never reached the follower's live feed")
	s.Require().Zero(luna.Feed().Unread(), "The author heard about their own reply")

	// --- STEP 4: CHAT WITH BOUNDED HISTORY ---
	s.Step("A long exchange keeps only the newest messages")
	const sent = domain.MaxHistory + 5
	for i := 0; i < sent; i++ {
		_, err := lunaChat.SendMessage(ctx, services.SendMessageCommand{
			FromID: "luna", FromName: "Luna", ToID: "severin", Text: fmt.Sprintf("message %d", i),
		})
		s.Require().NoError(err)
	}
	s.Eventually(func() bool {
		messages, err := lunaChat.Conversation(ctx, "luna", "severin")
		return err == nil && len(messages) == domain.MaxHistory
	}, 5*time.Second, 100*time.Millisecond, "History never trimmed down to the window")

	messages, err := lunaChat.Conversation(ctx, "luna", "severin")
	s.Require().NoError(err)
	s.Require().Equal(fmt.Sprintf("message %d", sent-1), messages[len(messages)-1].Text)
	// Every surviving message carries the sender's invisibility snapshot
	s.Require().Contains(messages[0].EffectSnapshot, domain.EffectInvisible)

	// --- STEP 5: DISGUISED GIFT ---
	s.Step("A disguised gift hides its sender")
	s.Require().NoError(lunaSocial.SendGift(ctx, services.SendGiftCommand{
		FromID: "luna", FromName: "Luna", ToID: "severin", Item: "chocolate frog", Disguised: true,
	}))
	s.Eventually(func() bool {
		for _, n := range severin.Feed().List() {
			if n.Kind == domain.KindGift {
				return n.Disguised
			}
		}
		return false
	}, 5*time.Second, 100*time.Millisecond, "Disguised gift never arrived")

	// --- STEP 6: MARK ALL READ ---
	s.Step("Marking all read clears the badge")
	s.Require().NoError(s.Engine.MarkAllRead(ctx, "severin"))
	s.Eventually(func() bool {
		return severin.Feed().Unread() == 0
	}, 5*time.Second, 100*time.Millisecond, "Badge never cleared")
}
