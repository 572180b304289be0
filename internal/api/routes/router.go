package routes

import (
	"net/http"

	"github.com/medreportai/companion/internal/api/handlers"
	"github.com/medreportai/companion/internal/api/middleware"
	"github.com/medreportai/companion/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	uploadHandler   *handlers.UploadHandler
	workflowHandler *handlers.WorkflowHandler
	analysisHandler *handlers.AnalysisHandler
	chatHandler     *handlers.ChatHandler
	bookingHandler  *handlers.BookingHandler
	streamHandler   *handlers.StreamHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	uploadHandler *handlers.UploadHandler,
	workflowHandler *handlers.WorkflowHandler,
	analysisHandler *handlers.AnalysisHandler,
	chatHandler *handlers.ChatHandler,
	bookingHandler *handlers.BookingHandler,
	streamHandler *handlers.StreamHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		uploadHandler:   uploadHandler,
		workflowHandler: workflowHandler,
		analysisHandler: analysisHandler,
		chatHandler:     chatHandler,
		bookingHandler:  bookingHandler,
		streamHandler:   streamHandler,
		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Upload endpoint
	r.mux.HandleFunc("POST /upload", r.uploadHandler.UploadFile)

	// Workflow endpoints
	r.mux.HandleFunc("POST /api/workflow/artifact", r.workflowHandler.SelectArtifact)
	r.mux.HandleFunc("GET /api/workflow", r.workflowHandler.GetWorkflow)

	// Analysis endpoints
	r.mux.HandleFunc("POST /api/analysis/submit", r.analysisHandler.SubmitAnalysis)
	r.mux.HandleFunc("POST /api/analysis/retry", r.analysisHandler.RetryAnalysis)
	r.mux.HandleFunc("GET /api/analysis", r.analysisHandler.GetAnalysis)

	// Chat endpoints
	r.mux.HandleFunc("POST /api/chat/messages", r.chatHandler.SendMessage)
	r.mux.HandleFunc("GET /api/chat/messages", r.chatHandler.GetMessages)

	// Doctor and booking endpoints
	r.mux.HandleFunc("GET /api/doctors", r.bookingHandler.ListDoctors)
	r.mux.HandleFunc("POST /api/booking/select", r.bookingHandler.SelectDoctor)
	r.mux.HandleFunc("POST /api/booking/submit", r.bookingHandler.SubmitBooking)
	r.mux.HandleFunc("POST /api/booking/reset", r.bookingHandler.ResetBooking)
	r.mux.HandleFunc("POST /api/booking/suggest", r.bookingHandler.SuggestDoctor)
	r.mux.HandleFunc("POST /api/booking/export", r.bookingHandler.ExportLedger)
	r.mux.HandleFunc("GET /api/booking", r.bookingHandler.GetBooking)

	// Workflow event stream
	if r.streamHandler != nil {
		r.mux.HandleFunc("GET /api/stream/workflow", r.streamHandler.StreamWorkflowEvents)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.IdentityMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
