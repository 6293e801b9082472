package tournament

import "fmt"

// Tournament is the in-memory snapshot every engine call reads.
type Tournament struct {
	TournamentID string          `yaml:"tournament_id"`
	Venues       []Venue         `yaml:"venues"`
	MatchUps     []MatchUp       `yaml:"matchups"`
	Links        []StructureLink `yaml:"links,omitempty"`
}

// Venue looks up a venue by id.
func (t *Tournament) Venue(venueID string) (*Venue, error) {
	for i := range t.Venues {
		if t.Venues[i].VenueID == venueID {
			return &t.Venues[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrVenueNotFound, venueID)
}

// Court looks up a court in any venue.
func (t *Tournament) Court(courtID string) (*Court, *Venue, error) {
	for i := range t.Venues {
		if c, ok := t.Venues[i].Court(courtID); ok {
			return c, &t.Venues[i], nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrCourtNotFound, courtID)
}

// MatchUp looks up a matchUp by id.
func (t *Tournament) MatchUp(matchUpID string) (*MatchUp, error) {
	for i := range t.MatchUps {
		if t.MatchUps[i].MatchUpID == matchUpID {
			return &t.MatchUps[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMatchUpNotFound, matchUpID)
}

// HasDraw reports whether any matchUp belongs to drawID.
func (t *Tournament) HasDraw(drawID string) bool {
	for _, m := range t.MatchUps {
		if m.DrawID == drawID {
			return true
		}
	}
	return false
}

// HasStructure reports whether any matchUp of drawID belongs to structureID.
func (t *Tournament) HasStructure(drawID, structureID string) bool {
	for _, m := range t.MatchUps {
		if m.DrawID == drawID && m.StructureID == structureID {
			return true
		}
	}
	return false
}

// AllCourts returns every court with its venue id filled in, in listing order.
func (t *Tournament) AllCourts() []Court {
	var courts []Court
	for _, v := range t.Venues {
		for _, c := range v.Courts {
			if c.VenueID == "" {
				c.VenueID = v.VenueID
			}
			courts = append(courts, c)
		}
	}
	return courts
}
