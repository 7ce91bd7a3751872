package dto

type UsageResponse struct {
	TotalRequests int     `json:"total_requests"`
	RequestsToday int     `json:"requests_today"`
	LastRequestAt *string `json:"last_request_at,omitempty"`
}
