package templates

import (
	"context"

	"github.com/tidusjar/RequestPlex/internal/types"
)

// templateKey identifies one (channel, kind) pair.
type templateKey struct {
	channel types.ChannelKind
	kind    types.EventKind
}

// MemoryStore is an immutable in-memory template store. It is the fallback
// when no database is configured, and the standard store for tests.
type MemoryStore struct {
	byKey map[templateKey]Template
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding the default template set with the
// given overrides applied on top. Overrides replace whole templates keyed by
// (Channel, Kind). The resulting store is immutable.
func NewMemoryStore(overrides ...Template) *MemoryStore {
	byKey := make(map[templateKey]Template)
	for _, ch := range []types.ChannelKind{types.ChannelDiscord, types.ChannelSlack, types.ChannelEmail, types.ChannelPushbullet} {
		for _, d := range defaultTemplates {
			t := d
			t.Channel = ch
			byKey[templateKey{ch, t.Kind}] = t
		}
	}
	for _, t := range overrides {
		byKey[templateKey{t.Channel, t.Kind}] = t
	}
	return &MemoryStore{byKey: byKey}
}

// NewEmptyMemoryStore creates a store holding only the given templates, with
// no defaults. Lookups for any other pair return ErrNotConfigured.
func NewEmptyMemoryStore(tmpls ...Template) *MemoryStore {
	byKey := make(map[templateKey]Template, len(tmpls))
	for _, t := range tmpls {
		byKey[templateKey{t.Channel, t.Kind}] = t
	}
	return &MemoryStore{byKey: byKey}
}

// Lookup returns the template for (channel, kind), or ErrNotConfigured when
// no row exists for the pair.
func (s *MemoryStore) Lookup(_ context.Context, channel types.ChannelKind, kind types.EventKind) (Template, error) {
	t, ok := s.byKey[templateKey{channel, kind}]
	if !ok {
		return Template{}, ErrNotConfigured
	}
	return t, nil
}

// defaultTemplates is the seed set shipped for every channel. Channel is
// filled in by NewMemoryStore. AddedToQueue and Test have no rows: both
// bypass templating by design.
var defaultTemplates = []Template{
	{
		Kind:    types.EventNewRequest,
		Enabled: true,
		Subject: "New Request!",
		Body:    "Hello! The user '{RequestedUser}' has requested the {Type} '{Title}'! Please log in to view it.",
	},
	{
		Kind:    types.EventRequestApproved,
		Enabled: true,
		Subject: "Request Approved!",
		Body:    "Hello! Your request for '{Title}' has been approved!",
	},
	{
		Kind:    types.EventRequestDeclined,
		Enabled: true,
		Subject: "Request Declined",
		Body:    "Hello! Your request for '{Title}' has been declined. Sorry about that!",
	},
	{
		Kind:    types.EventRequestAvailable,
		Enabled: true,
		Subject: "Now Available!",
		Body:    "Hello! The {Type} '{Title}' you requested is now available!",
	},
	{
		Kind:    types.EventIssueCreated,
		Enabled: true,
		Subject: "New Issue!",
		Body:    "A new issue has been reported: {IssueDescription}",
	},
	{
		Kind:    types.EventIssueComment,
		Enabled: true,
		Subject: "New Comment on Issue",
		Body:    "A new comment has been added to an issue: {IssueDescription}",
	},
	{
		Kind:    types.EventIssueResolved,
		Enabled: true,
		Subject: "Issue Resolved",
		Body:    "An issue has been resolved: {IssueDescription}. Thanks for reporting!",
	},
}
