package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"fleet/internal/domain"
	"fleet/internal/scheduling"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationDriverApproved      NotificationType = "DRIVER_APPROVED"
	NotificationDriverRejected      NotificationType = "DRIVER_REJECTED"
	NotificationAssignmentCreated   NotificationType = "ASSIGNMENT_CREATED"
	NotificationAssignmentCancelled NotificationType = "ASSIGNMENT_CANCELLED"
	NotificationDutyCompleted       NotificationType = "DUTY_COMPLETED"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string // Driver ID
	Title       string
	Message     string
	Data        map[string]any
	CreatedAt   time.Time
}

// NotificationService hands notifications to the delivery channel. Push
// delivery lives outside this service; here they are written to the log.
type NotificationService struct{}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyDriverReviewed tells a driver the outcome of onboarding review.
func (s *NotificationService) NotifyDriverReviewed(ctx context.Context, driver *domain.Driver) error {
	n := Notification{
		Type:        NotificationDriverRejected,
		RecipientID: driver.ID,
		Title:       "Application Reviewed",
		Message:     "Your driver application was not approved.",
		CreatedAt:   time.Now(),
	}
	if driver.Status == domain.DriverStatusActive {
		n.Type = NotificationDriverApproved
		n.Message = "Your driver application was approved. Welcome aboard!"
	}
	return s.send(ctx, n)
}

// NotifyAssignmentCreated tells a driver about a new vehicle assignment.
func (s *NotificationService) NotifyAssignmentCreated(ctx context.Context, a *domain.Assignment) error {
	return s.send(ctx, Notification{
		Type:        NotificationAssignmentCreated,
		RecipientID: a.DriverID,
		Title:       "New Vehicle Assignment",
		Message: fmt.Sprintf("You are assigned to vehicle %s from %s (%s shift)",
			a.VehicleID, a.StartDate.Format(scheduling.DateLayout), a.ShiftType),
		Data: map[string]any{
			"assignment_id": a.ID,
			"vehicle_id":    a.VehicleID,
			"start_date":    a.StartDate.Format(scheduling.DateLayout),
			"end_date":      scheduling.FormatDate(a.EndDate),
			"shift_type":    a.ShiftType,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyAssignmentCancelled tells a driver an assignment was cancelled.
func (s *NotificationService) NotifyAssignmentCancelled(ctx context.Context, a *domain.Assignment, reason string) error {
	return s.send(ctx, Notification{
		Type:        NotificationAssignmentCancelled,
		RecipientID: a.DriverID,
		Title:       "Assignment Cancelled",
		Message:     fmt.Sprintf("Your assignment to vehicle %s was cancelled", a.VehicleID),
		Data: map[string]any{
			"assignment_id": a.ID,
			"reason":        reason,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyDutyCompleted tells a driver what a finished duty earned.
func (s *NotificationService) NotifyDutyCompleted(ctx context.Context, d *domain.Duty) error {
	return s.send(ctx, Notification{
		Type:        NotificationDutyCompleted,
		RecipientID: d.DriverID,
		Title:       "Duty Completed",
		Message:     fmt.Sprintf("Duty closed with %d trips. Earnings: %.2f", d.TripCount, d.Earnings),
		Data: map[string]any{
			"duty_id":     d.ID,
			"earnings":    d.Earnings,
			"bmg_applied": d.BMGApplied,
		},
		CreatedAt: time.Now(),
	})
}

func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Title, notification.Message)

	return nil
}
