// Package queue publishes signup events to RabbitMQ and runs the
// background consumer that records them. Event delivery is best-effort:
// registration never fails because the broker is down.
package queue

import "time"

const signupQueueName = "user.registered"

// UserRegistered is emitted once per successful registration.
type UserRegistered struct {
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	Plan   string    `json:"plan"`
	At     time.Time `json:"at"`
}
