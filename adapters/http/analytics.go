package http

import (
	"net/http"
	"time"

	"mediavault/app"
	"mediavault/domain/bandwidth"
	"mediavault/pkg/jsonapi"
)

// defaultAnalyticsWindow is applied when the time-series endpoints get no
// explicit range.
const defaultAnalyticsWindow = 30 * 24 * time.Hour

// UserBandwidth handles GET /api/analytics/bandwidth.
func (h *Handler) UserBandwidth(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseOptionalRange(w, r)
	if !ok {
		return
	}

	defer h.observeAnalytics("user_bandwidth", time.Now())
	stats, err := h.analytics.UserTotals(r.Context(), userID(r), start, end)
	if err != nil {
		h.internalError(w, err, "user bandwidth")
		return
	}
	jsonapi.WriteData(w, http.StatusOK, stats)
}

// AssetBreakdown handles GET /api/analytics/bandwidth/assets.
func (h *Handler) AssetBreakdown(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseOptionalRange(w, r)
	if !ok {
		return
	}
	page, limit := jsonapi.ParsePaginationParams(r.URL.Query(), 20, 100)

	defer h.observeAnalytics("asset_breakdown", time.Now())
	breakdown, err := h.analytics.PerAssetBreakdown(r.Context(), userID(r), start, end, page, limit)
	if err != nil {
		h.internalError(w, err, "asset breakdown")
		return
	}

	p := jsonapi.NewPagination(breakdown.Total, page, limit)
	jsonapi.WriteDataMeta(w, http.StatusOK, breakdown, p.Meta())
}

// DailyBandwidth handles GET /api/analytics/bandwidth/daily.
func (h *Handler) DailyBandwidth(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseRangeWithDefaults(w, r)
	if !ok {
		return
	}

	defer h.observeAnalytics("daily_bandwidth", time.Now())
	series, err := h.analytics.DailySeries(r.Context(), userID(r), start, end)
	if err != nil {
		h.internalError(w, err, "daily bandwidth")
		return
	}
	if series == nil {
		series = []app.DailyBandwidth{}
	}
	jsonapi.WriteData(w, http.StatusOK, series)
}

// Charts handles GET /api/analytics/charts.
func (h *Handler) Charts(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseRangeWithDefaults(w, r)
	if !ok {
		return
	}

	granularity := bandwidth.ByDay
	if v := r.URL.Query().Get("groupBy"); v != "" {
		g, err := bandwidth.ParseGranularity(v)
		if err != nil {
			jsonapi.WriteError(w, jsonapi.ErrInvalidParam("groupBy", "must be day, month or year"))
			return
		}
		granularity = g
	}

	defer h.observeAnalytics("charts", time.Now())
	data, err := h.analytics.ChartSeries(r.Context(), userID(r), start, end, granularity)
	if err != nil {
		h.internalError(w, err, "charts")
		return
	}
	jsonapi.WriteData(w, http.StatusOK, data)
}

// parseOptionalRange reads startDate/endDate, both optional RFC3339.
// On failure it writes the validation error and returns ok=false.
func (h *Handler) parseOptionalRange(w http.ResponseWriter, r *http.Request) (start, end *time.Time, ok bool) {
	q := r.URL.Query()

	if v := q.Get("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			jsonapi.WriteError(w, jsonapi.ErrInvalidParam("startDate", "must be an RFC3339 timestamp"))
			return nil, nil, false
		}
		start = &t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			jsonapi.WriteError(w, jsonapi.ErrInvalidParam("endDate", "must be an RFC3339 timestamp"))
			return nil, nil, false
		}
		end = &t
	}
	return start, end, true
}

// parseRangeWithDefaults is parseOptionalRange with a trailing 30-day
// window filled in for missing bounds.
func (h *Handler) parseRangeWithDefaults(w http.ResponseWriter, r *http.Request) (start, end time.Time, ok bool) {
	sp, ep, ok := h.parseOptionalRange(w, r)
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	now := time.Now().UTC()
	end = now
	if ep != nil {
		end = *ep
	}
	start = end.Add(-defaultAnalyticsWindow)
	if sp != nil {
		start = *sp
	}
	return start, end, true
}

func (h *Handler) observeAnalytics(query string, started time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.AnalyticsQueries.WithLabelValues(query).Inc()
	h.metrics.AnalyticsDuration.WithLabelValues(query).Observe(time.Since(started).Seconds())
}
