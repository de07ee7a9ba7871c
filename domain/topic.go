package domain

import (
	"fmt"
	"time"
)

// Topic is a forum discussion thread. Posts live in a sub-collection under
// the topic; the topic record itself only names the thread.
type Topic struct {
	ID        string
	Forum     string
	Title     string
	AuthorID  string
	CreatedAt time.Time
}

// Post is one forum entry inside a topic.
type Post struct {
	ID        string
	AuthorID  string
	Author    string
	Content   string
	CreatedAt time.Time
}

// TopicsCollection is the collection path holding the topics of one forum room.
func TopicsCollection(forum string) string {
	return fmt.Sprintf("forums/%s/topics", forum)
}

// PostsCollection is the collection path holding the posts of one topic.
func PostsCollection(forum, topicID string) string {
	return fmt.Sprintf("forums/%s/topics/%s/posts", forum, topicID)
}

// MessagesCollection is the collection path holding one conversation's messages.
func MessagesCollection(conversationID string) string {
	return fmt.Sprintf("conversations/%s/messages", conversationID)
}

// PostFromData rebuilds a Post from a raw document payload.
func PostFromData(id string, data map[string]any) Post {
	return Post{
		ID:        id,
		AuthorID:  asString(data["uid"]),
		Author:    asString(data["author"]),
		Content:   asString(data["content"]),
		CreatedAt: asMillis(data["created"]),
	}
}
