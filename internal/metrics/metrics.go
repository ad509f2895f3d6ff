package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LoginsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cycure_logins_total",
		Help: "Successful logins.",
	})
	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cycure_registrations_total",
		Help: "Successful registrations.",
	})
	SubmissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cycure_quiz_submissions_total",
		Help: "Quiz submissions graded and recorded.",
	})
	GradedAnswersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cycure_graded_answers_total",
		Help: "Graded answers by result.",
	}, []string{"result"})
)

// Handler exposes the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// ObserveGrading records the per-answer outcomes of one grading run.
func ObserveGrading(correct, total int) {
	SubmissionsTotal.Inc()
	GradedAnswersTotal.WithLabelValues("correct").Add(float64(correct))
	GradedAnswersTotal.WithLabelValues("incorrect").Add(float64(total - correct))
}
