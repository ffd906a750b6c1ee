package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Activity is a chore label with an optional icon shown on its button.
type Activity struct {
	Name string
	Icon string
}

// Label returns the button caption, icon first.
func (a Activity) Label() string {
	if a.Icon == "" {
		return a.Name
	}
	return a.Icon + " " + a.Name
}

// Roster is the closed set of activities and people of one household.
// Both is the convenience value that logs a chore for every person.
type Roster struct {
	Activities []Activity
	People     []string
	Both       string
}

// DefaultRoster returns the roster the app shipped with.
func DefaultRoster() Roster {
	return Roster{
		Activities: []Activity{
			{Name: "Afgewassen", Icon: "🧽"},
			{Name: "Afgedroogd", Icon: "🍽️"},
			{Name: "Gekookt", Icon: "🍳"},
		},
		People: []string{"Nelson", "Monze"},
		Both:   "Beide",
	}
}

// ParseActivities parses "Name:icon,Name,..." into activities, dropping
// blanks and duplicates while preserving order.
func ParseActivities(s string) []Activity {
	var out []Activity
	seen := map[string]struct{}{}
	for _, part := range strings.Split(s, ",") {
		name, icon, _ := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, Activity{Name: name, Icon: strings.TrimSpace(icon)})
	}
	return out
}

// ParseList splits a comma-separated list, dropping blanks and duplicates.
func ParseList(s string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (r Roster) Validate() error {
	var errs []error
	if len(r.Activities) == 0 {
		errs = append(errs, errors.New("roster needs at least one activity"))
	}
	if len(r.People) == 0 {
		errs = append(errs, errors.New("roster needs at least one person"))
	}
	if r.Both != "" && r.HasPerson(r.Both) {
		errs = append(errs, fmt.Errorf("both label %q collides with a person", r.Both))
	}
	return errors.Join(errs...)
}

// ActivityNames returns the activity names in roster order.
func (r Roster) ActivityNames() []string {
	names := make([]string, len(r.Activities))
	for i, a := range r.Activities {
		names[i] = a.Name
	}
	return names
}

func (r Roster) HasActivity(name string) bool {
	for _, a := range r.Activities {
		if a.Name == name {
			return true
		}
	}
	return false
}

func (r Roster) HasPerson(name string) bool {
	for _, p := range r.People {
		if p == name {
			return true
		}
	}
	return false
}

// PersonChoices lists the selectable people, with the both value last.
func (r Roster) PersonChoices() []string {
	out := append([]string(nil), r.People...)
	if r.Both != "" {
		out = append(out, r.Both)
	}
	return out
}

// Expand turns one form submission into the records to append. The both
// value yields one record per person, all sharing the same timestamp.
func (r Roster) Expand(activity, person string, at time.Time) ([]Record, error) {
	activity = strings.TrimSpace(activity)
	person = strings.TrimSpace(person)
	if activity == "" {
		return nil, ErrEmptyActivity
	}
	if person == "" {
		return nil, ErrEmptyPerson
	}
	if !r.HasActivity(activity) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActivity, activity)
	}
	if at.IsZero() {
		return nil, ErrInvalidTimestamp
	}
	at = at.Truncate(time.Second)

	if r.Both != "" && person == r.Both {
		out := make([]Record, 0, len(r.People))
		for _, p := range r.People {
			out = append(out, Record{Activity: activity, Person: p, At: at})
		}
		return out, nil
	}
	if !r.HasPerson(person) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPerson, person)
	}
	return []Record{{Activity: activity, Person: person, At: at}}, nil
}
