// Package notificationservice turns invitation, assignment and membership
// events into per-user notifications and announces them on
// notification.events for live delivery.
package notificationservice
