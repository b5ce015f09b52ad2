package types

// EventKind identifies the category of domain occurrence that triggers a
// notification. The set is closed: every agent must either handle a kind or
// ignore it explicitly.
type EventKind string

const (
	EventNewRequest       EventKind = "new_request"
	EventRequestApproved  EventKind = "request_approved"
	EventRequestDeclined  EventKind = "request_declined"
	EventRequestAvailable EventKind = "request_available"
	EventAddedToQueue     EventKind = "added_to_queue"
	EventIssueCreated     EventKind = "issue_created"
	EventIssueComment     EventKind = "issue_comment"
	EventIssueResolved    EventKind = "issue_resolved"
	EventTest             EventKind = "test"
)

// AllEventKinds lists every valid EventKind. Used by the template seed data
// and by validators checking per-kind toggle overrides.
var AllEventKinds = []EventKind{
	EventNewRequest,
	EventRequestApproved,
	EventRequestDeclined,
	EventRequestAvailable,
	EventAddedToQueue,
	EventIssueCreated,
	EventIssueComment,
	EventIssueResolved,
	EventTest,
}

// ChannelKind identifies an outbound notification integration. Each channel
// has exactly one agent implementation and one settings type.
type ChannelKind string

const (
	ChannelDiscord    ChannelKind = "discord"
	ChannelSlack      ChannelKind = "slack"
	ChannelEmail      ChannelKind = "email"
	ChannelPushbullet ChannelKind = "pushbullet"
)

// TemplatedKinds are the event kinds that resolve their message text through
// the template store. AddedToQueue and Test deliberately bypass templating:
// the former reports an internal retry condition, the latter is a canned
// operator check.
var TemplatedKinds = []EventKind{
	EventNewRequest,
	EventRequestApproved,
	EventRequestDeclined,
	EventRequestAvailable,
	EventIssueCreated,
	EventIssueComment,
	EventIssueResolved,
}
