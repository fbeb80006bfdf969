package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the teacher-application module.
type Metrics struct {
	ApplicationsCreated  prometheus.Counter
	StatusTransitions    *prometheus.CounterVec
	ReconciledItems      *prometheus.CounterVec
	ReconcileDuration    *prometheus.HistogramVec
	IncompleteSubmission *prometheus.CounterVec
	RolesBackfilled      prometheus.Counter
}

// New registers the module metrics on reg. Tests pass prometheus.NewRegistry()
// so repeated construction does not collide on the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ApplicationsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "coursehub_teacher_applications_created_total",
			Help: "Total number of teacher applications created",
		}),
		StatusTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coursehub_teacher_application_transitions_total",
			Help: "Application status transitions by source and target status",
		}, []string{"from", "to"}),
		ReconciledItems: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coursehub_teacher_credentials_reconciled_total",
			Help: "Credential records written by reconciliation, by kind and operation",
		}, []string{"kind", "op"}),
		ReconcileDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coursehub_teacher_reconcile_duration_seconds",
			Help:    "Duration of credential batch reconciliation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"kind"}),
		IncompleteSubmission: f.NewCounterVec(prometheus.CounterOpts{
			Name: "coursehub_teacher_incomplete_submissions_total",
			Help: "Submissions rejected by the completeness gate, by first missing category",
		}, []string{"missing"}),
		RolesBackfilled: f.NewCounter(prometheus.CounterOpts{
			Name: "coursehub_teacher_applicant_roles_backfilled_total",
			Help: "Applicant roles granted by the backfill job",
		}),
	}
}

func (m *Metrics) IncrementApplicationsCreated() {
	m.ApplicationsCreated.Inc()
}

func (m *Metrics) IncrementTransition(from, to string) {
	if from == "" {
		from = "NONE"
	}
	m.StatusTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) AddReconciled(kind string, created, updated int) {
	m.ReconciledItems.WithLabelValues(kind, "create").Add(float64(created))
	m.ReconciledItems.WithLabelValues(kind, "update").Add(float64(updated))
}

// ObserveReconcile records the duration since start.
func (m *Metrics) ObserveReconcile(kind string, start time.Time) {
	m.ReconcileDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementIncomplete(missing string) {
	m.IncompleteSubmission.WithLabelValues(missing).Inc()
}

func (m *Metrics) IncrementRolesBackfilled() {
	m.RolesBackfilled.Inc()
}
