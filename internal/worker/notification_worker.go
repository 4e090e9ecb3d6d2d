package worker

import (
	"github.com/eventdesk/event-ticketing/internal/service"
)

// StartNotificationWorker subscribes the notification service to domain events.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
