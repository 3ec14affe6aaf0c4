package orchestrator

import (
    "context"
    "fmt"
    "os"
    "time"

    "github.com/rs/zerolog/log"

    "github.com/local/pdfxtract/internal/document"
    "github.com/local/pdfxtract/internal/extract"
    "github.com/local/pdfxtract/internal/filetype"
    "github.com/local/pdfxtract/internal/metrics"
)

// Document is an open PDF the orchestrator can extract from and must close.
type Document interface {
    extract.Document
    Close() error
}

// OpenFunc opens a local PDF. Injectable so tests can supply fakes.
type OpenFunc func(ctx context.Context, path string, opts document.OpenOptions) (Document, error)

type Dependencies struct {
    Open            OpenFunc
    Extractor       *extract.Extractor
    Detector        *filetype.Detector
    DownloadTimeout time.Duration
}

type Orchestrator struct {
    deps Dependencies
}

func New(deps Dependencies) *Orchestrator {
    if deps.Open == nil {
        deps.Open = func(ctx context.Context, path string, opts document.OpenOptions) (Document, error) {
            return document.Open(ctx, path, opts)
        }
    }
    if deps.Extractor == nil {
        deps.Extractor = &extract.Extractor{}
    }
    if deps.Detector == nil {
        deps.Detector = filetype.New()
    }
    return &Orchestrator{deps: deps}
}

// Run executes one extraction attempt end to end: resolve the source to a
// local file, open it (authenticating if the request carries a password),
// run the requested extractor, and release the document on every path.
// Password errors pass through untouched so the session layer can drive
// the retry flow.
func (o *Orchestrator) Run(ctx context.Context, req extract.Request, rep extract.Reporter) (extract.Result, error) {
    start := time.Now()
    kind := string(req.Kind)

    res, err := o.run(ctx, req, rep)
    outcome := "ok"
    if err != nil {
        outcome = "error"
    }
    metrics.ObserveTask(kind, outcome, time.Since(start))
    return res, err
}

func (o *Orchestrator) run(ctx context.Context, req extract.Request, rep extract.Reporter) (extract.Result, error) {
    local, tmp, err := document.EnsureLocal(ctx, req.SourcePath, o.deps.DownloadTimeout)
    if err != nil {
        return extract.Result{}, err
    }
    if tmp != "" {
        defer os.Remove(tmp)
    }

    if err := o.deps.Detector.RequirePDF(local); err != nil {
        return extract.Result{}, err
    }

    doc, err := o.deps.Open(ctx, local, document.OpenOptions{
        Password:    req.Password,
        HasPassword: req.HasPassword,
    })
    if err != nil {
        return extract.Result{}, err
    }
    defer doc.Close()

    log.Info().Str("attempt", req.AttemptID).Str("kind", kindLabel(req)).
        Int("pages", doc.NumPage()).Str("file", local).Msg("starting extraction")

    var res extract.Result
    switch {
    case req.Kind == extract.KindImages:
        res, err = o.deps.Extractor.Images(doc, req.OutputDir, rep)
    case req.Kind == extract.KindText && req.UseOCR:
        res, err = o.deps.Extractor.TextOCR(ctx, doc, req.OutputDir, rep)
    case req.Kind == extract.KindText:
        res, err = o.deps.Extractor.Text(doc, req.OutputDir, rep)
    case req.Kind == extract.KindHTML:
        res, err = o.deps.Extractor.HTML(doc, req.OutputDir, rep)
    default:
        return extract.Result{}, fmt.Errorf("unknown task kind %q", req.Kind)
    }
    if err != nil {
        return extract.Result{}, err
    }

    metrics.AddPages(string(req.Kind), doc.NumPage())
    if req.Kind == extract.KindImages {
        metrics.AddImages(res.Count)
    }
    return res, nil
}

func kindLabel(req extract.Request) string {
    if req.Kind == extract.KindText && req.UseOCR {
        return "text_ocr"
    }
    return string(req.Kind)
}
