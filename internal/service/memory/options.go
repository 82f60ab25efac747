package memory

import "time"

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

type options struct {
	now Clock
}

// Option configures a Store.
type Option func(*options)

func WithClock(now Clock) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

const defaultAgentName = "Assistant"

type conversationOptions struct {
	agentName string
}

// ConversationOption configures a Conversation.
type ConversationOption func(*conversationOptions)

// WithAgentName sets the speaker label used for replies in ContextFor.
func WithAgentName(name string) ConversationOption {
	return func(o *conversationOptions) {
		o.agentName = name
	}
}

func buildConversationOptions(opts []ConversationOption) conversationOptions {
	o := conversationOptions{agentName: defaultAgentName}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
