package models

// Metrics aggregates the query history.
type Metrics struct {
	TotalQueries      int64   `json:"total_queries"`
	SuccessfulQueries int64   `json:"successful_queries"`
	FailedQueries     int64   `json:"failed_queries"`
	SuccessRate       float64 `json:"success_rate"`
	CacheHits         int64   `json:"cache_hits"`
	CacheHitRate      float64 `json:"cache_hit_rate"`
	AvgQueryTimeMS    float64 `json:"avg_query_time_ms"`
	AvgStepsPerQuery  float64 `json:"avg_steps_per_query"`
	TotalDocuments    int64   `json:"total_documents"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// QueryCount is a query text with how often it was asked.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// SlowQuery is one of the slowest recorded executions.
type SlowQuery struct {
	Query      string `json:"query"`
	DurationMS int64  `json:"duration_ms"`
	Timestamp  string `json:"timestamp"`
}

// Trends summarizes queries inside a recent time window.
type Trends struct {
	WindowMinutes   int     `json:"window_minutes"`
	QueriesInWindow int64   `json:"queries_in_window"`
	AvgTimeMS       float64 `json:"avg_time_ms"`
	SuccessRate     float64 `json:"success_rate"`
}

// Analytics is the response body of the analytics endpoint.
type Analytics struct {
	Metrics        Metrics      `json:"metrics"`
	Trends         Trends       `json:"performance_trends"`
	TopQueries     []QueryCount `json:"top_queries"`
	SlowestQueries []SlowQuery  `json:"slowest_queries"`
}
