package client

import (
	"context"
	"log"
	"net/http"
)

// HealthStatus is the /health probe result.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
}

func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var health HealthStatus
	if err := c.apiCall(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		log.Println("Error checking health:", err)
		return HealthStatus{}, err
	}
	return health, nil
}

// ServerStats are the aggregate counts from /stats.
type ServerStats struct {
	TotalUsers         int    `json:"total_users"`
	TotalStudents      int    `json:"total_students"`
	TotalClasses       int    `json:"total_classes"`
	TotalClassStudents int    `json:"total_class_students"`
	Timestamp          string `json:"timestamp"`
}

func (c *Client) Stats(ctx context.Context) (ServerStats, error) {
	var stats ServerStats
	if err := c.apiCall(ctx, http.MethodGet, "/stats", nil, &stats); err != nil {
		log.Println("Error fetching stats:", err)
		return ServerStats{}, err
	}
	return stats, nil
}

type ContactParams struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Contact submits the public contact form.
func (c *Client) Contact(ctx context.Context, params ContactParams) error {
	if err := c.apiCall(ctx, http.MethodPost, "/contact", params, nil); err != nil {
		log.Println("Error sending contact message:", err)
		return err
	}
	return nil
}
