package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SuccessfulRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyhub_successful_requests",
			Help: "Total number of successful (2xx) HTTP requests",
		},
		[]string{"path"},
	)
	BadRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyhub_bad_requests",
			Help: "Total number of client-error (4xx) HTTP requests",
		},
		[]string{"path"},
	)
	MessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyhub_messages_sent",
			Help: "Total number of subject messages posted",
		},
		[]string{"path"},
	)
)

func init() {
	prometheus.MustRegister(SuccessfulRequests, BadRequests, MessagesSent)
}

// Middleware counts request outcomes by route template.
func Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		path := ctx.FullPath()

		if path == "" {
			path = "unmatched"
		}

		status := ctx.Writer.Status()

		switch {
		case status >= 200 && status < 300:
			SuccessfulRequests.WithLabelValues(path).Inc()
		case status >= 400 && status < 500:
			BadRequests.WithLabelValues(path).Inc()
		}
	}
}
