package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	appanalyses "github.com/bryanwahyu/knowledge-analyzer/internal/application/analyses"
	domai "github.com/bryanwahyu/knowledge-analyzer/internal/domain/ai"
	domain "github.com/bryanwahyu/knowledge-analyzer/internal/domain/analysis"
	"github.com/bryanwahyu/knowledge-analyzer/internal/middleware"
)

// Options carries what the router needs besides the service.
type Options struct {
	Log            logrus.FieldLogger
	Metrics        *middleware.Metrics
	Health         map[string]middleware.HealthChecker
	AllowedOrigins []string
}

type Router struct {
	svc     *appanalyses.Service
	log     logrus.FieldLogger
	metrics *middleware.Metrics
}

func NewRouter(svc *appanalyses.Service, opts Options) http.Handler {
	if opts.Log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		opts.Log = l
	}
	if opts.Metrics == nil {
		opts.Metrics = middleware.NewMetrics()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	r := &Router{svc: svc, log: opts.Log, metrics: opts.Metrics}
	mux := chi.NewRouter()
	mux.Use(
		middleware.RequestID,
		middleware.Logging(opts.Log),
		opts.Metrics.Middleware,
		chimw.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}),
	)

	mux.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"Hello": "World"})
	})
	mux.Get("/health", middleware.HealthHandler(opts.Health))
	mux.Get("/metrics", opts.Metrics.Handler)

	mux.Post("/analyze", r.wrap(r.handleAnalyze))
	mux.Get("/search", r.wrap(r.handleSearch))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var vErr *validationError
			if errors.As(err, &vErr) {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": vErr.Error()})
				return
			}
			r.log.WithError(err).WithField("request_id", middleware.GetRequestID(req.Context())).Error("request failed")
			if errors.Is(err, domai.ErrQuotaExceeded) {
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }

// POST /analyze
// Body: {"text": "<string>"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text *string `json:"text"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &validationError{msg: "invalid request body: " + err.Error()}
	}
	if body.Text == nil {
		return &validationError{msg: "text: field required"}
	}

	res, err := r.svc.Analyze(req.Context(), *body.Text)
	if err != nil {
		return err
	}
	if res.Failure != nil {
		r.metrics.IncrementAnalysesFailed()
	} else {
		r.metrics.IncrementAnalyses()
	}

	writeJSON(w, http.StatusOK, res.Response)
	return nil
}

// GET /search?keyword=&sentiment=
func (r *Router) handleSearch(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	list, err := r.svc.Search(req.Context(), appanalyses.SearchQuery{
		Keyword:   q.Get("keyword"),
		Sentiment: q.Get("sentiment"),
	})
	if errors.Is(err, appanalyses.ErrNoSearchCriteria) {
		writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return nil
	}
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Analysis{}
	}
	r.metrics.IncrementSearches()

	writeJSON(w, http.StatusOK, map[string]any{"data": list})
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
