package model

import "github.com/m-mizutani/slipway/pkg/domain/types"

// HealthStatus represents the health check status
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// NewHealthStatus reports the service as healthy at the built version.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		Status:  "healthy",
		Service: types.ServiceName,
		Version: types.Version,
	}
}
