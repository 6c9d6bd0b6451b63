// Package domain contains the core entities of the notification service:
// notifications, delivery preferences, project membership, and the domain
// events that trigger a fan-out. Entities validate themselves on
// construction and carry no persistence or transport concerns.
package domain
