// Package bot posts occasional synthetic replies to chat messages.
package bot

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultBots are the identities replies are posted under.
var DefaultBots = []string{"Alice", "Bob", "Charlie", "TestBot"}

// DefaultResponses are the canned reply texts.
var DefaultResponses = []string{
	"That's interesting!",
	"Great point!",
	"I agree with that.",
	"Thanks for sharing!",
	"Nice to see this working!",
	"Deployment is smooth!",
}

// ScheduledReply is a bot reply waiting to be posted.
type ScheduledReply struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Due       time.Time `json:"due"`
	InReplyTo int64     `json:"in_reply_to"`
}

// Responder decides whether and how a bot answers a message.
type Responder struct {
	mu          sync.Mutex
	rng         *rand.Rand
	probability float64
	delay       time.Duration
	bots        []string
	responses   []string
}

// NewResponder creates a responder drawing from rng.
func NewResponder(rng *rand.Rand, probability float64, delay time.Duration) *Responder {
	return &Responder{
		rng:         rng,
		probability: probability,
		delay:       delay,
		bots:        DefaultBots,
		responses:   DefaultResponses,
	}
}

// Decide returns a reply to a message from sender posted at at, or false
// when no bot answers. The author is never the sender.
func (r *Responder) Decide(sender string, messageID int64, at time.Time) (ScheduledReply, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.probability <= 0 || r.rng.Float64() >= r.probability {
		return ScheduledReply{}, false
	}

	candidates := slices.DeleteFunc(slices.Clone(r.bots), func(b string) bool { return b == sender })
	if len(candidates) == 0 || len(r.responses) == 0 {
		return ScheduledReply{}, false
	}

	return ScheduledReply{
		ID:        uuid.New().String(),
		Username:  candidates[r.rng.IntN(len(candidates))],
		Text:      r.responses[r.rng.IntN(len(r.responses))],
		Due:       at.Add(r.delay),
		InReplyTo: messageID,
	}, true
}
