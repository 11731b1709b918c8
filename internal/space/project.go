package space

// Badge is one translated facet value shown on a card.
type Badge struct {
	Facet Facet  `json:"facet"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// Card is the presentation shape of one space: everything a renderer needs
// and nothing it has to dig for.
type Card struct {
	ID int `json:"id"`

	ImageSrc string `json:"image_src"`

	// Status collapsed for display: shared for the designated shared space,
	// otherwise available or taken (published and friends render as taken).
	Status      Status `json:"status"`
	StatusLabel string `json:"status_label"`

	Badges []Badge `json:"badges"`

	Description   string `json:"description"`
	DescriptionJa string `json:"description_ja"`
}

// DisplayStatus collapses a space's status for display. sharedID designates
// the single always-shared space, which overrides status-derived labels.
func DisplayStatus(s Space, sharedID int) Status {
	if s.ID == sharedID {
		return StatusShared
	}
	if s.Available() {
		return StatusAvailable
	}
	return StatusTaken
}

// Project maps one space to its card. Pure: no network, no mutation, and
// every optional field may be absent.
func Project(s Space, lang Lang, sharedID int) Card {
	c := Card{
		ID:            s.ID,
		Description:   s.Description,
		DescriptionJa: s.DescriptionJa,
	}

	if im, ok := s.OriginalImage(); ok {
		c.ImageSrc = im.Src
	}

	c.Status = DisplayStatus(s, sharedID)
	c.StatusLabel = StatusLabel(lang, c.Status)

	if s.Location != "" {
		c.Badges = append(c.Badges, Badge{
			Facet: FacetLocation,
			Value: s.Location,
			Label: TagLabel(lang, FacetLocation, s.Location),
		})
	}
	for _, v := range s.Element {
		c.Badges = append(c.Badges, Badge{
			Facet: FacetElement,
			Value: v,
			Label: TagLabel(lang, FacetElement, v),
		})
	}
	for _, v := range s.Style {
		c.Badges = append(c.Badges, Badge{
			Facet: FacetStyle,
			Value: v,
			Label: TagLabel(lang, FacetStyle, v),
		})
	}

	return c
}

// ProjectAll maps a filtered view to cards in order.
func ProjectAll(spaces []Space, lang Lang, sharedID int) []Card {
	out := make([]Card, 0, len(spaces))
	for _, s := range spaces {
		out = append(out, Project(s, lang, sharedID))
	}
	return out
}
