package web

import (
    "encoding/json"
    "html/template"
    "net/http"
    "path/filepath"
    "strconv"
    "sync"

    "github.com/local/pdfxtract/internal/extract"
    "github.com/local/pdfxtract/internal/filetype"
    "github.com/local/pdfxtract/internal/task"
)

// Web serves the local dashboard: a form to start extraction tasks and a
// polled event feed driving the log pane, progress bar and password prompt.
type Web struct {
    tpl      *template.Template
    session  *task.Session
    detector *filetype.Detector

    mu     sync.Mutex
    events []feedEvent
    next   int
}

type feedEvent struct {
    Seq int `json:"seq"`
    task.Event
}

const feedCap = 512

func New(session *task.Session) *Web {
    // load templates
    tpl := template.Must(template.ParseGlob(filepath.Join("web", "templates", "*.html")))
    return &Web{tpl: tpl, session: session, detector: filetype.New()}
}

// SetSession wires the session after construction. The dashboard is the
// session's event sink, so the two reference each other.
func (w *Web) SetSession(session *task.Session) { w.session = session }

// Sink buffers an event for the polled feed. Serves as the session's event
// sink and is safe for concurrent use.
func (w *Web) Sink(ev task.Event) {
    w.mu.Lock()
    defer w.mu.Unlock()
    w.events = append(w.events, feedEvent{Seq: w.next, Event: ev})
    w.next++
    if len(w.events) > feedCap {
        w.events = w.events[len(w.events)-feedCap:]
    }
}

func (w *Web) RegisterRoutes(mux *http.ServeMux) {
    mux.HandleFunc("/health", func(wr http.ResponseWriter, r *http.Request) { wr.WriteHeader(http.StatusOK); _, _ = wr.Write([]byte("ok")) })
    mux.HandleFunc("/", w.handleDashboard)
    mux.HandleFunc("/select", w.handleSelect)
    mux.HandleFunc("/task", w.handleTask)
    mux.HandleFunc("/password", w.handlePassword)
    mux.HandleFunc("/events", w.handleEvents)
}

func (w *Web) render(wr http.ResponseWriter, name string, data any) {
    _ = w.tpl.ExecuteTemplate(wr, name, data)
}

func (w *Web) handleDashboard(wr http.ResponseWriter, r *http.Request) {
    if r.URL.Path != "/" && r.URL.Path != "/dashboard" {
        http.NotFound(wr, r)
        return
    }
    w.render(wr, "dashboard.html", nil)
}

// handleSelect validates a source path at selection time, before any task
// starts, so the user learns about a bad pick immediately.
func (w *Web) handleSelect(wr http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { wr.WriteHeader(http.StatusMethodNotAllowed); return }
    if err := r.ParseForm(); err != nil { http.Error(wr, "invalid form", 400); return }

    path := r.Form.Get("source_path")
    if path == "" { http.Error(wr, "source_path is required", 400); return }

    if err := w.detector.RequirePDF(path); err != nil {
        w.Sink(task.Event{Type: task.EventLog, Message: "Not a valid PDF: " + err.Error()})
        writeJSON(wr, map[string]any{"ok": false, "error": err.Error()})
        return
    }
    w.Sink(task.Event{Type: task.EventLog, Message: "Selected PDF: " + filepath.Base(path)})
    writeJSON(wr, map[string]any{"ok": true})
}

func (w *Web) handleTask(wr http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { wr.WriteHeader(http.StatusMethodNotAllowed); return }
    if err := r.ParseForm(); err != nil { http.Error(wr, "invalid form", 400); return }

    source := r.Form.Get("source_path")
    outDir := r.Form.Get("output_dir")
    kind := extract.Kind(r.Form.Get("kind"))
    useOCR := r.Form.Get("ocr") == "on"

    if source == "" || outDir == "" {
        http.Error(wr, "source_path and output_dir are required", 400)
        return
    }
    switch kind {
    case extract.KindImages, extract.KindText, extract.KindHTML:
    default:
        http.Error(wr, "unknown task kind", 400)
        return
    }

    w.session.Submit(extract.Request{
        SourcePath: source,
        OutputDir:  outDir,
        Kind:       kind,
        UseOCR:     useOCR && kind == extract.KindText,
    })
    writeJSON(wr, map[string]any{"ok": true})
}

func (w *Web) handlePassword(wr http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost { wr.WriteHeader(http.StatusMethodNotAllowed); return }
    if err := r.ParseForm(); err != nil { http.Error(wr, "invalid form", 400); return }

    switch r.Form.Get("action") {
    case "submit":
        // an empty password is still a real attempt
        w.session.SubmitPassword(r.Form.Get("password"))
    case "cancel":
        w.session.CancelPassword()
    default:
        http.Error(wr, "unknown action", 400)
        return
    }
    writeJSON(wr, map[string]any{"ok": true})
}

// handleEvents returns buffered events with Seq >= since, so the dashboard
// polls with the last seen sequence number and never misses or repeats one.
func (w *Web) handleEvents(wr http.ResponseWriter, r *http.Request) {
    since, _ := strconv.Atoi(r.URL.Query().Get("since"))

    w.mu.Lock()
    out := make([]feedEvent, 0, len(w.events))
    for _, ev := range w.events {
        if ev.Seq >= since {
            out = append(out, ev)
        }
    }
    next := w.next
    w.mu.Unlock()

    writeJSON(wr, map[string]any{"events": out, "next": next})
}

func writeJSON(wr http.ResponseWriter, v any) {
    wr.Header().Set("Content-Type", "application/json")
    _ = json.NewEncoder(wr).Encode(v)
}
