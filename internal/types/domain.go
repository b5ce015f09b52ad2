package types

import (
	"fmt"
	"time"
)

// Deep-link bases for external metadata sources. Title links are built by
// plain concatenation with the subject's external ID and are never otherwise
// validated.
const (
	IMDBBaseURL = "http://www.imdb.com/title/"
	TVDBBaseURL = "https://www.thetvdb.com/?tab=series&id="
)

// RequestedUser identifies who raised a request. Alias is an optional display
// name; on chat channels it can be set to a mention token (e.g. "<@id>") so
// that including it triggers a client-side at-mention.
type RequestedUser struct {
	Username string
	Alias    string
}

// SeriesInfo carries the parent-series metadata for a TV episode request.
// Overview, poster, release year and the TVDB deep link for TV events all
// resolve from the parent, not the episode.
type SeriesInfo struct {
	Title       string
	Overview    string
	PosterPath  string
	ReleaseDate time.Time
	TvDbID      int
}

// RequestSubject is the entity a request-bearing event is about. It is a
// closed sum over MovieRequest and TvEpisodeRequest; the one place that needs
// parent-vs-self field resolution switches exhaustively on the concrete type.
type RequestSubject interface {
	subject()
}

// MovieRequest is a requested movie.
type MovieRequest struct {
	Title         string
	Overview      string
	PosterPath    string
	ReleaseDate   time.Time
	ImdbID        string
	RequestedUser RequestedUser
	RequestedDate time.Time
}

func (MovieRequest) subject() {}

// TvEpisodeRequest is a requested TV episode. It carries no display metadata
// of its own: title, overview, poster, year and the TVDB deep link all
// resolve from the parent Series reference.
type TvEpisodeRequest struct {
	RequestedUser RequestedUser
	RequestedDate time.Time
	Series        SeriesInfo
}

func (TvEpisodeRequest) subject() {}

// NotificationEvent is the immutable description of "what happened" passed
// into dispatch. It is constructed once per triggering occurrence and never
// mutated by any agent. Subject is nil for events without a request entity
// (issue lifecycle events carry their text in ExtraText, Test carries
// nothing).
type NotificationEvent struct {
	Kind       EventKind
	Subject    RequestSubject
	ExtraText  string
	ExtraImage string
}

// NewRequestEvent builds an event for a request milestone (new request,
// approval, decline, availability, queue-retry).
func NewRequestEvent(kind EventKind, subject RequestSubject) NotificationEvent {
	return NotificationEvent{Kind: kind, Subject: subject}
}

// NewIssueEvent builds an issue lifecycle event. description feeds the
// {IssueDescription} template placeholder; image optionally overrides the
// rendered image.
func NewIssueEvent(kind EventKind, description, image string) NotificationEvent {
	return NotificationEvent{Kind: kind, ExtraText: description, ExtraImage: image}
}

// RenderedMessage is the channel-agnostic output of template rendering.
// Produced fresh per dispatch call; never shared across calls. A message
// with Disabled=true must never be sent.
type RenderedMessage struct {
	Subject  string
	Body     string
	Image    string
	Disabled bool
}

// SubjectFacts is the flattened view of a RequestSubject used by renderers
// and payload builders. DetailURL is derived solely from the subject's
// external ID, never from mutable display state.
type SubjectFacts struct {
	Title         string
	Type          string
	Overview      string
	Poster        string
	ReleaseYear   int
	DetailURL     string
	RequestedUser RequestedUser
	RequestedDate time.Time
}

// ResolveSubject flattens a RequestSubject into SubjectFacts. For TV episode
// requests the title, overview, poster and year come from the parent series.
// An unknown subject variant is a core invariant violation and panics.
func ResolveSubject(s RequestSubject) SubjectFacts {
	switch r := s.(type) {
	case MovieRequest:
		return SubjectFacts{
			Title:         r.Title,
			Type:          "movie",
			Overview:      r.Overview,
			Poster:        r.PosterPath,
			ReleaseYear:   yearOf(r.ReleaseDate),
			DetailURL:     IMDBBaseURL + r.ImdbID,
			RequestedUser: r.RequestedUser,
			RequestedDate: r.RequestedDate,
		}
	case TvEpisodeRequest:
		return SubjectFacts{
			Title:         r.Series.Title,
			Type:          "tv show",
			Overview:      r.Series.Overview,
			Poster:        r.Series.PosterPath,
			ReleaseYear:   yearOf(r.Series.ReleaseDate),
			DetailURL:     fmt.Sprintf("%s%d", TVDBBaseURL, r.Series.TvDbID),
			RequestedUser: r.RequestedUser,
			RequestedDate: r.RequestedDate,
		}
	default:
		panic(fmt.Sprintf("types: unknown request subject variant %T", s))
	}
}

// DisplayName decides which identity to present for a requester. The alias is
// used only when useAlias is on AND an alias exists; otherwise the plain
// username. Callers must make this decision once per rendered payload and
// reuse it everywhere the user is referenced.
func (u RequestedUser) DisplayName(useAlias bool) string {
	if useAlias && u.Alias != "" {
		return u.Alias
	}
	return u.Username
}

// yearOf returns the release year, or 0 when the date is unknown.
func yearOf(t time.Time) int {
	if t.IsZero() {
		return 0
	}
	return t.Year()
}
