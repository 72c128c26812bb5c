// jcad-relay accepts websocket peers for named shared CAD documents, keeps
// the authoritative replicas in memory, and snapshots them to sqlite. It
// only relays automerge sync traffic; it never edits the object sequence.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/automerge/automerge-go"
	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/brichet/JupyterCAD/pkg/store"
	"github.com/brichet/JupyterCAD/pkg/transport"
	"github.com/brichet/JupyterCAD/pkg/viz"
)

const backupInterval = time.Second * 5

func main() {
	if err := mainInner(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func mainInner() error {
	addrVar := flag.String("addr", "localhost:8080", "the address to listen on")
	dbVar := flag.String("db", "jcad-relay.sqlite3", "the sqlite database to snapshot documents into")
	flag.Parse()

	slog.Info("Opening snapshot store", "path", *dbVar)
	st, err := store.Open(*dbVar)
	if err != nil {
		return err
	}
	defer st.Close()

	s := &server{store: st, saved: map[string]string{}}
	if err := s.hydrate(); err != nil {
		return err
	}

	r := mux.NewRouter()
	r.Use(func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			m := httpsnoop.CaptureMetrics(handler, writer, request)
			slog.Info("handled", "method", request.Method, "url", request.URL, "duration", m.Duration, "status", m.Code)
		})
	})
	r.Methods(http.MethodGet).Path("/documents").HandlerFunc(s.listDocuments)
	r.Methods(http.MethodGet).Path("/documents/{id}/latest").HandlerFunc(s.getDocument)
	r.Methods(http.MethodGet).Path("/documents/{id}/sync").HandlerFunc(s.syncDocument)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := new(sync.WaitGroup)

	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(backupInterval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.backup()
			case <-ctx.Done():
				return
			}
		}
	}()

	httpServer := &http.Server{Addr: *addrVar, Handler: r}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server listen failed", "err", err)
		}
	}()

	exit := make(chan os.Signal, 1) // buffer size 1 so the notifier is not blocked
	signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-exit
	slog.Info("Signal caught", "sig", sig)
	cancel()
	_ = httpServer.Close()
	wg.Wait()

	s.backup()
	s.docs.Range(func(idRaw, docRaw any) bool {
		if svgPath, err := viz.RenderToTemp(docRaw.(*automerge.Doc)); err != nil {
			slog.Error("failed to render history", "document", idRaw, "err", err)
		} else {
			slog.Info("rendered history", "document", idRaw, "path", "file://"+svgPath)
		}
		return true
	})
	return nil
}

type server struct {
	store *store.Store
	docs  sync.Map

	savedLock sync.Mutex
	saved     map[string]string
}

// hydrate loads every persisted document into the in-memory cache.
func (s *server) hydrate() error {
	ids, err := s.store.List()
	if err != nil {
		return err
	}
	for _, id := range ids {
		doc, err := s.store.Latest(id)
		if err != nil {
			return err
		}
		s.docs.Store(id, doc)
		slog.Info("hydrated document", "id", id, "heads", doc.Heads())
	}
	return nil
}

// backup snapshots every document whose state moved since the last pass.
func (s *server) backup() {
	s.docs.Range(func(idRaw, docRaw any) bool {
		id, doc := idRaw.(string), docRaw.(*automerge.Doc)
		content := base64.StdEncoding.EncodeToString(doc.Save())

		s.savedLock.Lock()
		changed := s.saved[id] != content
		if changed {
			s.saved[id] = content
		}
		s.savedLock.Unlock()

		if changed {
			if err := s.store.Put(id, doc); err != nil {
				slog.Error("failed to snapshot document", "id", id, "err", err)
			} else {
				slog.Info("snapshotted", "id", id, "heads", doc.Heads())
			}
		}
		return true
	})
}

func (s *server) loadDoc(id string) (*automerge.Doc, bool) {
	docRaw, ok := s.docs.Load(id)
	if !ok {
		return nil, false
	}
	doc, ok := docRaw.(*automerge.Doc)
	return doc, ok
}

func (s *server) listDocuments(writer http.ResponseWriter, request *http.Request) {
	ids := []string{}
	s.docs.Range(func(idRaw, _ any) bool {
		ids = append(ids, idRaw.(string))
		return true
	})
	writer.Header().Add("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(map[string]any{"documents": ids}); err != nil {
		slog.Error("failed to write document list", "err", err)
	}
}

func (s *server) getDocument(writer http.ResponseWriter, request *http.Request) {
	vars := mux.Vars(request)
	doc, ok := s.loadDoc(vars["id"])
	if !ok {
		writer.WriteHeader(http.StatusNotFound)
		return
	}
	fork, err := doc.Fork()
	if err != nil {
		slog.Error("failed to fork", "err", err)
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}
	writer.Header().Add("Content-Type", "application/octet-stream")
	if _, err := writer.Write(fork.Save()); err != nil {
		slog.Error("failed to write out", "err", err)
	}
}

func (s *server) syncDocument(writer http.ResponseWriter, request *http.Request) {
	vars := mux.Vars(request)
	doc, ok := s.loadDoc(vars["id"])
	if !ok {
		// First peer for this id establishes the document.
		doc = automerge.New()
		actual, _ := s.docs.LoadOrStore(vars["id"], doc)
		doc = actual.(*automerge.Doc)
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	conn, err := upgrader.Upgrade(writer, request, nil)
	if err != nil {
		slog.Error("failed to upgrade", "err", err)
		return
	}
	defer conn.Close()

	hs, err := transport.ReadHandshake(conn)
	if err != nil {
		slog.Error("failed to read handshake", "err", err)
		return
	}
	slog.Info("peer connected", "document", vars["id"],
		"path", stringOrNull(hs.Comm.Path),
		"format", stringOrNull(hs.Comm.Format),
		"contentType", stringOrNull(hs.Comm.ContentType))

	syncState := automerge.NewSyncState(doc)
	if err := transport.Sync(request.Context(), conn, syncState); err != nil {
		slog.Error("failed to sync", "err", err)
		_ = conn.Close()
	}
}

func stringOrNull(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}
