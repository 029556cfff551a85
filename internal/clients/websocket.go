package clients

import (
	"context"
	"fmt"

	ws "affordability-assessment/internal/transport/websocket"
)

const (
	MessageAssessmentUpdated = "assessment_updated"
	MessageReportProgress    = "report_progress"
	MessageReportComplete    = "report_complete"
	MessageReportFailed      = "report_failed"
)

// WebSocketClient pushes domain events to a user's open sockets. A nil hub turns every call into a no-op.
type WebSocketClient struct {
	hub *ws.Hub
}

func NewWebSocketClient(hub *ws.Hub) *WebSocketClient {
	return &WebSocketClient{hub: hub}
}

func (c *WebSocketClient) send(userID int64, kind, channel string, data map[string]any) error {
	if c == nil || c.hub == nil {
		return nil
	}
	c.hub.Broadcast(userID, &ws.Message{
		Type:    kind,
		Channel: fmt.Sprintf("%s#%d", channel, userID),
		Data:    data,
	})
	return nil
}

// NotifyAssessmentUpdated carries the freshly computed summary so clients can redraw totals.
func (c *WebSocketClient) NotifyAssessmentUpdated(ctx context.Context, userID int64, assessmentID string, summary any) error {
	return c.send(userID, MessageAssessmentUpdated, "assessment."+assessmentID, map[string]any{
		"id":      assessmentID,
		"summary": summary,
	})
}

func (c *WebSocketClient) NotifyReportProgress(ctx context.Context, userID int64, reportID string, progress float64, stage string) error {
	data := map[string]any{
		"id":       reportID,
		"progress": progress,
	}
	if stage != "" {
		data["stage"] = stage
	}
	return c.send(userID, MessageReportProgress, "notify_user_of_report_progress", data)
}

func (c *WebSocketClient) NotifyReportComplete(ctx context.Context, userID int64, reportID, url, filename string) error {
	return c.send(userID, MessageReportComplete, "notify_user_when_report_complete", map[string]any{
		"id":       reportID,
		"url":      url,
		"filename": filename,
		"user_id":  userID,
	})
}

func (c *WebSocketClient) NotifyReportFailed(ctx context.Context, userID int64, reportID, errMsg string) error {
	return c.send(userID, MessageReportFailed, "notify_user_when_report_failed", map[string]any{
		"id":      reportID,
		"message": errMsg,
		"user_id": userID,
	})
}
