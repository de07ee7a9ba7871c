// Package internal holds the operator-facing debug surface: a tiny HTTP
// viewer over the raw document store, shared by the daemon and the
// standalone viewer binary.
package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

var (
	resumeChan  = make(chan struct{}, 1)
	currentPort int
)

type InspectRow struct {
	Key        string
	Collection string
	ID         string
	Updated    string
	Detail     string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// Inspect starts the viewer, runs fn, then blocks until /resume is hit.
// Handy inside a paused test to look at the store state in a browser.
func Inspect(db *badger.DB, port int, endpoint string, mapper RowMapper, statsProvider StatsProvider, prefix string, fn func()) {
	StartDebugServer(db, port, endpoint, mapper, statsProvider)

	if fn != nil {
		fn()
	}

	Wait(prefix)
}

func StartDebugServer(db *badger.DB, port int, endpoint string, mapper RowMapper, statsProvider StatsProvider) {
	currentPort = port
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	if mapper == nil {
		mapper = DocumentMapper
	}

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "users:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}

		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	mux.HandleFunc("/resume", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-resumeChan:
		default:
		}
		resumeChan <- struct{}{}
		fmt.Fprint(w, "RESUMED")
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
	}()
}

func Wait(prefix string) {
	url := fmt.Sprintf("http://localhost:%d/inspect?prefix=%s", currentPort, prefix)
	fmt.Printf("\n--- PAUSED ---\n\n%s\n\n--------------\n", url)
	<-resumeChan
}

// DocumentMapper renders one stored document. Keys follow the
// "collection:id" scheme; values are JSON objects.
func DocumentMapper(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:        key,
		Collection: key,
		ID:         "--------",
		Updated:    "--:--:--",
		Detail:     fmt.Sprintf("Size: %d bytes", len(val)),
	}

	if idx := strings.LastIndex(key, ":"); idx >= 0 {
		row.Collection = key[:idx]
		row.ID = key[idx+1:]
		if len(row.ID) > 8 {
			row.ID = row.ID[:8]
		}
	}

	var data map[string]any
	if err := json.Unmarshal(val, &data); err != nil {
		return row
	}

	if millis, ok := data["created"].(float64); ok {
		row.Updated = time.UnixMilli(int64(millis)).Format("15:04:05")
	} else if millis, ok := data["lastActive"].(float64); ok {
		row.Updated = time.UnixMilli(int64(millis)).Format("15:04:05")
	}

	fields := make([]string, 0, len(data))
	for k, v := range data {
		fields = append(fields, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(fields)
	row.Detail = strings.Join(fields, " ")
	if len(row.Detail) > 120 {
		row.Detail = row.Detail[:120] + "…"
	}
	return row
}
