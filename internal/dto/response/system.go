package response

import "time"

type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Driver    string    `json:"driver"`
	Timestamp time.Time `json:"timestamp"`
}

type ServiceInfo struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}
