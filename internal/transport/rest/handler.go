package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"affordability-assessment/internal/domain"
	"affordability-assessment/internal/service"
)

type AssessmentService interface {
	Create(ctx context.Context, userID int64, brokerRef string) (*service.Session, error)
	Get(ctx context.Context, userID int64, id string) (*service.Session, error)
	List(ctx context.Context, userID int64) ([]service.SessionInfo, error)
	Delete(ctx context.Context, userID int64, id string) error

	SetBrokerRef(ctx context.Context, userID int64, id, brokerRef string) (*service.Session, error)
	SetHousehold(ctx context.Context, userID int64, id string, h domain.Household) (*service.Session, error)
	SetLoanDetails(ctx context.Context, userID int64, id string, ld domain.LoanDetails) (*service.Session, error)

	AddApplicant(ctx context.Context, userID int64, id string, input *domain.Applicant) (*service.Session, int64, error)
	UpdateApplicant(ctx context.Context, userID int64, id string, applicantID int64, input domain.Applicant) (*service.Session, error)
	RemoveApplicant(ctx context.Context, userID int64, id string, applicantID int64) (*service.Session, error)

	AddUnsecuredCredit(ctx context.Context, userID int64, id string, input *domain.UnsecuredCreditItem) (*service.Session, error)
	UpdateUnsecuredCredit(ctx context.Context, userID int64, id string, index int, input domain.UnsecuredCreditItem) (*service.Session, error)
	RemoveUnsecuredCredit(ctx context.Context, userID int64, id string, index int) (*service.Session, error)

	AddSecuredCredit(ctx context.Context, userID int64, id string, input *domain.SecuredCreditItem) (*service.Session, error)
	UpdateSecuredCredit(ctx context.Context, userID int64, id string, index int, input domain.SecuredCreditItem) (*service.Session, error)
	RemoveSecuredCredit(ctx context.Context, userID int64, id string, index int) (*service.Session, error)
}

type ReportService interface {
	StartReport(ctx context.Context, userID int64, assessmentID string) (string, error)
	GetReports(ctx context.Context, userID int64) ([]service.ReportStatus, error)
	GetReport(ctx context.Context, reportID string, userID int64) (*service.ReportStatus, error)
}

// FileResolver maps a stored report name to a file on disk.
type FileResolver interface {
	Resolve(stored string) (path, downloadName string, err error)
}

type SocketHandler interface {
	HandleWebSocket(w http.ResponseWriter, r *http.Request, userID int64)
}

type Handler struct {
	assessments AssessmentService
	reports     ReportService
	files       FileResolver
	sockets     SocketHandler
}

// NewHandler accepts nil files or sockets; their routes are then not mounted.
func NewHandler(assessments AssessmentService, reports ReportService, files FileResolver, sockets SocketHandler) *Handler {
	return &Handler{
		assessments: assessments,
		reports:     reports,
		files:       files,
		sockets:     sockets,
	}
}

// InitRouterWithAuth keeps /health and /files public and puts everything else behind
// authMiddleware.
func (h *Handler) InitRouterWithAuth(authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		withCORS,
	)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		Success(w, "ok", nil)
	})

	if h.files != nil {
		r.Get("/files/{file}", h.serveFile)
	}

	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}

		if h.sockets != nil {
			r.Get("/ws", h.serveWebSocket)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/credit-types", h.creditTypes)

			r.Route("/assessments", func(r chi.Router) {
				r.Post("/", h.createAssessment)
				r.Get("/", h.listAssessments)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.getAssessment)
					r.Delete("/", h.deleteAssessment)
					r.Get("/summary", h.getSummary)
					r.Get("/validation", h.getValidation)

					r.Put("/broker-ref", h.setBrokerRef)
					r.Put("/household", h.setHousehold)
					r.Put("/loan-details", h.setLoanDetails)

					r.Post("/applicants", h.addApplicant)
					r.Put("/applicants/{applicantID}", h.updateApplicant)
					r.Delete("/applicants/{applicantID}", h.removeApplicant)

					r.Post("/unsecured-credit", h.addUnsecuredCredit)
					r.Put("/unsecured-credit/{index}", h.updateUnsecuredCredit)
					r.Delete("/unsecured-credit/{index}", h.removeUnsecuredCredit)

					r.Post("/secured-credit", h.addSecuredCredit)
					r.Put("/secured-credit/{index}", h.updateSecuredCredit)
					r.Delete("/secured-credit/{index}", h.removeSecuredCredit)

					r.Post("/reports", h.startReport)
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/", h.listReports)
				r.Get("/{report_id}", h.getReport)
			})
		})
	})

	return r
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
