package http

import (
	"github.com/devicenanny/notifier/internal/domain/model"
	"github.com/google/uuid"
)

// DeliveryResponse describes one attempted send.
type DeliveryResponse struct {
	Destination string `json:"destination"`
	Target      string `json:"target"`
	Outcome     string `json:"outcome"`
	Error       string `json:"error,omitempty"`
}

// ReportResponse is returned when an event is dispatched synchronously.
type ReportResponse struct {
	EventID    uuid.UUID          `json:"event_id"`
	Kind       string             `json:"kind"`
	Suppressed bool               `json:"suppressed"`
	Delivered  bool               `json:"delivered"`
	Deliveries []DeliveryResponse `json:"deliveries"`
}

// QueuedResponse is returned when an event is handed to the queue worker.
type QueuedResponse struct {
	Status string `json:"status"`
	Kind   string `json:"kind"`
}

// ErrorResponse defines a standard structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// toReportResponse is a helper function to map the domain report to the DTO.
func toReportResponse(r model.Report) ReportResponse {
	resp := ReportResponse{
		EventID:    r.EventID,
		Kind:       string(r.Kind),
		Suppressed: r.Suppressed,
		Delivered:  r.Delivered(),
		Deliveries: make([]DeliveryResponse, 0, len(r.Deliveries)),
	}
	for _, d := range r.Deliveries {
		dr := DeliveryResponse{
			Destination: string(d.Destination),
			Target:      d.Target,
			Outcome:     string(d.Outcome),
		}
		if d.Err != nil {
			dr.Error = d.Err.Error()
		}
		resp.Deliveries = append(resp.Deliveries, dr)
	}
	return resp
}
