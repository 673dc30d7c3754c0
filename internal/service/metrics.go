package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	approvalsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cms_draft_approvals_total",
			Help: "Total number of review drafts approved into source",
		},
	)

	aiPromotionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cms_ai_review_promotions_total",
			Help: "Total number of ai-review drafts promoted into review",
		},
	)

	rejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_draft_rejections_total",
			Help: "Total number of draft tiers rejected",
		},
		[]string{"tier"},
	)
)
