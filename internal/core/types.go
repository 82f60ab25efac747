package core

const (
	AppName       = "chatgate"
	AppUserAgent  = "chatgate/0.1"
	RepositoryURL = "https://github.com/sandevgo/chatgate"
	Version       = "0.1.0"
)

// Event is an inbound chat message as delivered by a transport.
type Event struct {
	ID         string
	AuthorID   string
	ChannelID  string
	Content    string
	IsFromSelf bool
}
