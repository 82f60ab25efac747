package responder

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sandevgo/chatgate/internal/service/gate"
)

const (
	msgInFlight   = "💕 Hey there, I'm still processing your previous message. Please wait a moment!"
	msgDuplicate  = "🔄 Hey, I just received a similar message. Please wait for me to finish processing!"
	msgOverloaded = "😰 The server is overloaded, please try again in a few minutes! (Server overloaded, please try again later)"
	msgInternal   = "💕 😅 Sorry I'm having some technical issues right now. Could you try again in a few minutes?"
	msgNoPrevious = "You don't have any previous messages or this is your first message >///<."
)

var previousTriggers = []string{"previous message", "tin nhắn trước", "câu trước"}

func isPreviousQuery(content string) bool {
	lower := strings.ToLower(content)
	for _, trigger := range previousTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

func cooldownMessage(remaining time.Duration) string {
	secs := int(math.Ceil(remaining.Seconds()))
	return fmt.Sprintf("⏰ Sorry, I need %d seconds to process your previous message. Please wait a moment!", secs)
}

func quotaMessage(untilReset time.Duration) string {
	return fmt.Sprintf(
		"😅 Sorry, I've reached my daily API quota! Please try again tomorrow. (Daily API limit reached)\n⏰ Time remaining: %s",
		gate.FormatUntilReset(untilReset),
	)
}

func previousMessage(content string) string {
	return fmt.Sprintf("Your previous message was: \"%s\"", content)
}

func errorMessage(err error) string {
	return fmt.Sprintf("❌ An error occurred: %v", err)
}

// rejectionMessage is empty for rejections that get no reply.
func rejectionMessage(d gate.Decision) string {
	switch d.Reason {
	case gate.ReasonOnCooldown:
		return cooldownMessage(d.Remaining)
	case gate.ReasonInFlight:
		return msgInFlight
	case gate.ReasonDuplicateContent:
		return msgDuplicate
	default:
		return ""
	}
}
