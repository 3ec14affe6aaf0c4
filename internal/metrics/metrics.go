package metrics

import (
    "net/http"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
    tasksTotal = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "pdfxtract",
            Name:      "tasks_total",
            Help:      "Total extraction tasks by kind and result",
        },
        []string{"kind", "result"},
    )

    taskDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "pdfxtract",
            Name:      "task_duration_seconds",
            Help:      "Duration of extraction tasks by kind",
            Buckets:   prometheus.DefBuckets,
        },
        []string{"kind"},
    )

    pagesProcessed = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "pdfxtract",
            Name:      "pages_processed_total",
            Help:      "Total pages processed by task kind",
        },
        []string{"kind"},
    )

    imagesExtracted = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "pdfxtract",
            Name:      "images_extracted_total",
            Help:      "Total embedded images written to disk",
        },
    )

    ocrPages = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "pdfxtract",
            Name:      "ocr_pages_total",
            Help:      "OCR page recognitions by result",
        },
        []string{"result"},
    )

    passwordPrompts = prometheus.NewCounter(
        prometheus.CounterOpts{
            Namespace: "pdfxtract",
            Name:      "password_prompts_total",
            Help:      "Times the credential prompt was shown",
        },
    )
)

// Init registers collectors.
func Init() {
    prometheus.MustRegister(tasksTotal, taskDuration, pagesProcessed, imagesExtracted, ocrPages, passwordPrompts)
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func ObserveTask(kind, result string, dur time.Duration) {
    tasksTotal.WithLabelValues(kind, result).Inc()
    taskDuration.WithLabelValues(kind).Observe(dur.Seconds())
}

func AddPages(kind string, n int)  { pagesProcessed.WithLabelValues(kind).Add(float64(n)) }
func AddImages(n int)              { imagesExtracted.Add(float64(n)) }
func IncOCRPage(result string)     { ocrPages.WithLabelValues(result).Inc() }
func IncPasswordPrompt()           { passwordPrompts.Inc() }
