package main

import (
    "context"
    "fmt"
    "net/http"
    "os"
    "os/exec"
    "os/signal"
    "runtime"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    "github.com/rs/zerolog/log"

    cfgpkg "github.com/local/pdfxtract/internal/config"
    "github.com/local/pdfxtract/internal/document"
    "github.com/local/pdfxtract/internal/extract"
    logpkg "github.com/local/pdfxtract/internal/logger"
    "github.com/local/pdfxtract/internal/metrics"
    "github.com/local/pdfxtract/internal/orchestrator"
    "github.com/local/pdfxtract/internal/task"
    web "github.com/local/pdfxtract/internal/web"
)

func main() {
    _ = godotenv.Load()
    cfg := cfgpkg.FromEnv()

    // Init logging
    _ = logpkg.Init(logpkg.Options{
        Level: cfg.Logging.Level,
        Pretty: cfg.Logging.Pretty,
        File: cfg.Logging.File,
        MaxSizeMB: cfg.Logging.MaxSizeMB,
        MaxBackups: cfg.Logging.MaxBackups,
        MaxAgeDays: cfg.Logging.MaxAgeDays,
        Compress: cfg.Logging.Compress,
    })

    metrics.Init()
    document.CleanupTemps(24 * time.Hour)

    // Extraction pipeline
    ext := &extract.Extractor{
        ProgressEvery: cfg.Extract.ProgressEvery,
        OCRDPI:        cfg.OCR.DPI,
        OCR: extract.NewOCR(func() (extract.Engine, error) {
            return extract.NewTesseract(cfg.OCR.Binary, cfg.OCR.Language, cfg.OCR.PageTimeout)
        }),
    }
    orch := orchestrator.New(orchestrator.Dependencies{
        Extractor:       ext,
        DownloadTimeout: cfg.Extract.DownloadTimeout,
    })

    // Interactive session loop
    sessionCtx, cancelSession := context.WithCancel(context.Background())
    defer cancelSession()

    dash := web.New(nil)
    session := task.NewSession(orch, dash.Sink)
    dash.SetSession(session)
    go session.Run(sessionCtx)

    mux := http.NewServeMux()
    dash.RegisterRoutes(mux)
    mux.Handle("/metrics", metrics.Handler())

    addr := cfg.Server.Host + ":" + cfg.Server.Port
    srv := &http.Server{Addr: addr, Handler: mux}

    go func(){
        log.Info().Msgf("dashboard listening on http://%s", addr)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatal().Err(err).Msg("http server error")
        }
    }()

    if cfg.Server.OpenBrowser {
        openBrowser("http://" + addr)
    }

    // Graceful shutdown
    stop := make(chan os.Signal, 1)
    signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
    <-stop
    cancelSession()
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    _ = srv.Shutdown(ctx)
    fmt.Println("shutdown complete")
}

func openBrowser(url string) {
    var cmd *exec.Cmd
    switch runtime.GOOS {
    case "darwin":
        cmd = exec.Command("open", url)
    case "windows":
        cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
    default:
        cmd = exec.Command("xdg-open", url)
    }
    if err := cmd.Start(); err != nil {
        log.Warn().Err(err).Msg("could not open browser")
    }
}
