// Package notify announces content events to subscribers over SNS.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"edpsych-connect/internal/common/errors"
	"edpsych-connect/internal/common/logger"
	"edpsych-connect/internal/content"
)

const EventPostApproved = "blog_post_approved"

// Publisher sends a message to a topic.
type Publisher interface {
	Publish(ctx context.Context, subject, message string, attributes map[string]string) (string, error)
}

// PostApprovedEvent is the message body published after an approval.
type PostApprovedEvent struct {
	NotificationID string `json:"notificationId"`
	Event          string `json:"event"`
	Slug           string `json:"slug"`
	Title          string `json:"title"`
	Date           string `json:"date"`
	ApprovedBy     string `json:"approvedBy"`
	ApprovedAt     string `json:"approvedAt"`
}

// ApprovalNotifier implements content.ApprovalNotifier.
type ApprovalNotifier struct {
	publisher Publisher
	log       logger.Logger
	now       func() time.Time
}

var _ content.ApprovalNotifier = (*ApprovalNotifier)(nil)

func NewApprovalNotifier(publisher Publisher, log logger.Logger) *ApprovalNotifier {
	return &ApprovalNotifier{
		publisher: publisher,
		log:       log.WithFields(map[string]interface{}{"component": "approval-notifier"}),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (n *ApprovalNotifier) PostApproved(ctx context.Context, post content.PostSummary, actor string) error {
	event := PostApprovedEvent{
		NotificationID: uuid.New().String(),
		Event:          EventPostApproved,
		Slug:           post.Slug,
		Title:          post.Title,
		Date:           post.Date,
		ApprovedBy:     actor,
		ApprovedAt:     n.now().Format(time.RFC3339),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return errors.NewInternalError("failed to encode approval event", err)
	}

	messageID, err := n.publisher.Publish(ctx, "Blog post approved: "+post.Title, string(body),
		map[string]string{"event": EventPostApproved})
	if err != nil {
		return errors.NewNotificationSendFailedError("sns", err)
	}

	n.log.Info("approval notification published", map[string]interface{}{
		"notificationId": event.NotificationID,
		"messageId":      messageID,
		"slug":           post.Slug,
	})
	return nil
}
