package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_commands_total",
		Help: "Total number of cart commands applied",
	}, []string{"command"})

	WishlistCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_commands_total",
		Help: "Total number of wishlist commands applied",
	}, []string{"command"})

	InvalidCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_invalid_commands_total",
		Help: "Total number of commands rejected at the caller boundary",
	}, []string{"reason"})

	HydrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_hydrations_total",
		Help: "Total number of state hydrations by state and outcome",
	}, []string{"state", "outcome"})

	PersistWritesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_persist_writes_failed_total",
		Help: "Total number of write-through failures",
	}, []string{"state"})

	PersistWriteLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shop_persist_write_latency_seconds",
		Help:    "Latency of write-through operations",
		Buckets: prometheus.DefBuckets,
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shop_active_sessions",
		Help: "Number of sessions with a live shop",
	})

	EventsPublishFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_events_publish_failed_total",
		Help: "Total number of shop events that could not be published",
	}, []string{"event_type"})

	ObservedCartValue = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shop_observed_cart_value",
		Help:    "Cart totals seen on the shop event stream",
		Buckets: []float64{0, 25, 50, 100, 150, 250, 500, 1000},
	})

	ObservedCartItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shop_observed_cart_items",
		Help:    "Cart item counts seen on the shop event stream",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})

	ObservedWishlistItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shop_observed_wishlist_items",
		Help:    "Wishlist sizes seen on the shop event stream",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})

	CheckoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Total number of simulated checkouts by outcome",
	}, []string{"outcome"})

	CheckoutLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_latency_seconds",
		Help:    "Latency of simulated checkouts",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
