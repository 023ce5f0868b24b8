package messaging

import (
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metricsCollector Prometheus 指标收集器
type metricsCollector struct {
	processDuration *prometheus.HistogramVec
	processTotal    *prometheus.CounterVec
	messageSize     *prometheus.HistogramVec
}

// newMetricsCollector 创建 Prometheus 指标收集器
func newMetricsCollector(namespace string) *metricsCollector {
	if namespace == "" {
		namespace = "messaging"
	}
	// 服务名中的连字符不是合法的指标名字符
	namespace = strings.ReplaceAll(namespace, "-", "_")

	return &metricsCollector{
		processDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "process_duration_seconds",
				Help:      "Message process duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"topic"},
		),
		processTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "process_total",
				Help:      "Total number of processed messages",
			},
			[]string{"topic", "status"},
		),
		messageSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "message_size_bytes",
				Help:      "Message payload size in bytes",
				Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
			},
			[]string{"topic"},
		),
	}
}

// Middleware 指标收集中间件
// 自动收集每条消息的处理时长、处理结果与消息大小
func (c *metricsCollector) Middleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		topic := message.SubscribeTopicFromCtx(msg.Context())

		c.messageSize.WithLabelValues(topic).Observe(float64(len(msg.Payload)))

		start := time.Now()
		produced, err := next(msg)
		c.processDuration.WithLabelValues(topic).Observe(time.Since(start).Seconds())

		status := "success"
		if err != nil {
			status = "error"
		}
		c.processTotal.WithLabelValues(topic, status).Inc()

		return produced, err
	}
}
