package eventlog

import "sort"

// Counts holds totals for one sound or command.
type Counts struct {
	Name     string
	Plays    int
	Drops    int
	Commands int
}

// Summarize totals entries per name, most used first.
func Summarize(entries []Entry) []Counts {
	byName := map[string]*Counts{}
	for _, e := range entries {
		c, ok := byName[e.Name]
		if !ok {
			c = &Counts{Name: e.Name}
			byName[e.Name] = c
		}
		switch e.Kind {
		case KindPlay:
			c.Plays++
		case KindDrop:
			c.Drops++
		case KindCommand:
			c.Commands++
		}
	}

	out := make([]Counts, 0, len(byName))
	for _, c := range byName {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		ti := out[i].Plays + out[i].Drops + out[i].Commands
		tj := out[j].Plays + out[j].Drops + out[j].Commands
		if ti != tj {
			return ti > tj
		}
		return out[i].Name < out[j].Name
	})
	return out
}
