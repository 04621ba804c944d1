package internal

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key  string
	Size int
}

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]int
}

// StartInspector serves a development-only view of the raw store on its
// own port: key listing per prefix plus entry counts. Never expose it
// publicly; values are not shown but keys reveal usernames.
func StartInspector(db *badger.DB, port int, log *slog.Logger) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "user:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  countByPrefix(db),
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				data.Items = append(data.Items, InspectRow{
					Key:  string(item.Key()),
					Size: int(item.ValueSize()),
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		address := fmt.Sprintf("localhost:%d", port)
		log.Info("Starting store inspector", "address", address)
		if err := http.ListenAndServe(address, mux); err != nil {
			log.Error("store inspector stopped", "error", err)
		}
	}()
}

func countByPrefix(db *badger.DB) map[string]int {
	stats := map[string]int{"users": 0, "messages": 0}
	_ = db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			switch {
			case strings.HasPrefix(key, "user:"):
				stats["users"]++
			case strings.HasPrefix(key, "msg:"):
				stats["messages"]++
			}
		}
		return nil
	})
	return stats
}
