package metrics

import "strconv"

// InitializeMetrics pre-populates the expected label combinations so that
// every metric is exported from the first Prometheus scrape. Call once at
// startup with the configured rendition heights.
func InitializeMetrics(heights ...int) {
	LibraryBuildsTotal.WithLabelValues("success")
	LibraryBuildsTotal.WithLabelValues("error")

	for _, check := range []string{"traverse", "browse"} {
		PermissionDenials.WithLabelValues(check)
	}

	for _, result := range []string{"success", "failure"} {
		AuthAttemptsTotal.WithLabelValues(result)
	}

	for _, h := range heights {
		height := strconv.Itoa(h)
		ThumbnailCacheHits.WithLabelValues(height)
		ThumbnailCacheMisses.WithLabelValues(height)
		for _, t := range []string{"image", "video"} {
			ThumbnailGenerationDuration.WithLabelValues(height, t)
			for _, status := range []string{"success", "error"} {
				ThumbnailGenerationsTotal.WithLabelValues(height, t, status)
			}
		}
	}

	for _, op := range []string{
		"create_user", "get_user", "list_users", "validate_credentials",
		"update_password", "set_admin", "set_active",
		"add_user_to_group", "remove_user_from_group", "user_groups", "list_groups",
		"create_session", "validate_session", "delete_session", "clean_expired_sessions",
	} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
