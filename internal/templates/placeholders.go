package templates

import (
	"strconv"
	"strings"
	"time"

	"github.com/tidusjar/RequestPlex/internal/types"
)

// longDateLayout matches the human-readable date used in footers and bodies,
// e.g. "Friday, 22 October 2021".
const longDateLayout = "Monday, 02 January 2006"

// Values carries every substitutable placeholder value for one render. Built
// once per render call from the event, the subject facts and the static
// customization; never shared across calls.
type Values struct {
	Title            string
	Type             string
	RequestedUser    string
	Alias            string
	Year             int
	Overview         string
	PosterImage      string
	ApplicationURL   string
	RequestedDate    time.Time
	IssueDescription string
}

// ValuesFromFacts seeds Values from resolved subject facts.
func ValuesFromFacts(facts types.SubjectFacts) Values {
	return Values{
		Title:         facts.Title,
		Type:          facts.Type,
		RequestedUser: facts.RequestedUser.Username,
		Alias:         facts.RequestedUser.Alias,
		Year:          facts.ReleaseYear,
		Overview:      facts.Overview,
		PosterImage:   facts.Poster,
		RequestedDate: facts.RequestedDate,
	}
}

// Substitute replaces every known {Placeholder} token in text. Unknown tokens
// are left in place so a misspelled placeholder is visible in the delivered
// message rather than silently dropped. A zero Year substitutes to the empty
// string.
func Substitute(text string, v Values) string {
	year := ""
	if v.Year != 0 {
		year = strconv.Itoa(v.Year)
	}

	date := ""
	if !v.RequestedDate.IsZero() {
		date = v.RequestedDate.Format(longDateLayout)
	}

	r := strings.NewReplacer(
		"{Title}", v.Title,
		"{Type}", v.Type,
		"{RequestedUser}", v.RequestedUser,
		"{Alias}", v.Alias,
		"{Year}", year,
		"{Overview}", v.Overview,
		"{PosterImage}", v.PosterImage,
		"{ApplicationUrl}", v.ApplicationURL,
		"{RequestedDate}", date,
		"{IssueDescription}", v.IssueDescription,
	)
	return r.Replace(text)
}
