package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"moonhall/docstore"
	"moonhall/domain"
	"moonhall/effects"
	"moonhall/internal"
	"moonhall/presence"
)

// Read-only window over a live database: who is around, what they drank,
// and what is sitting unread in each feed.
func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening while the daemon holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	store := docstore.NewBadgerStore(db, logs.GetLoggerFromString("error"))
	ctx := context.Background()
	now := time.Now()

	printUsers(ctx, store, now)
	fmt.Println()
	printNotifications(ctx, store)
}

func printUsers(ctx context.Context, store docstore.Store, now time.Time) {
	color.Cyan.Println("Users")

	docs, err := store.Query(ctx, "users", nil, &docstore.OrderBy{Field: "displayName"}, 0)
	if err != nil {
		log.Fatalf("User scan failed: %v", err)
	}

	tracker := presence.NewTracker(store, logs.GetLoggerFromString("error"), 0)
	table := newTable([]string{"ID", "Name", "Online", "Effects", "Followed Topics"})
	for _, doc := range docs {
		user := domain.UserFromData(doc.ID, doc.Data)

		online := color.Red.Sprint("no")
		if tracker.IsOnline(user, now) {
			online = color.Green.Sprint("yes")
		}

		active := effects.Active(user, now)
		names := make([]string, len(active))
		for i, e := range active {
			names[i] = string(e)
		}

		table.Append([]string{
			shorten(user.ID), user.DisplayName, online,
			strings.Join(names, " "), fmt.Sprintf("%d", len(user.FollowedTopics)),
		})
	}
	table.Render()
}

func printNotifications(ctx context.Context, store docstore.Store) {
	color.Cyan.Println("Notifications")

	docs, err := store.Query(ctx, "notifications", nil, &docstore.OrderBy{Field: "created", Desc: true}, 50)
	if err != nil {
		log.Fatalf("Notification scan failed: %v", err)
	}

	table := newTable([]string{"ID", "To", "Kind", "Title", "Read", "Created"})
	for _, doc := range docs {
		n := domain.NotificationFromData(doc.ID, doc.Data)

		read := color.Yellow.Sprint("unread")
		if n.Read {
			read = "read"
		}

		table.Append([]string{
			shorten(n.ID), shorten(n.Recipient), string(n.Kind),
			n.Title, read, n.CreatedAt.Format("02 Jan 15:04"),
		})
	}
	table.Render()
}

func newTable(headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func shorten(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
