// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

// DeployQueueName is the durable queue deployment events travel on.
const DeployQueueName = "deploy.pulled"

// DeploymentPulledEvent is published after the webhook verified a push and
// the working tree was updated.  It is informational; nothing depends on
// its delivery.
type DeploymentPulledEvent struct {
	RepoDir   string `json:"repo_dir"`
	Remote    string `json:"remote"`
	Branch    string `json:"branch,omitempty"`
	Algorithm string `json:"algorithm"`
	Output    string `json:"output"`
	PulledAt  string `json:"pulled_at"`
}
