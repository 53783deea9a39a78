package model

import "math/rand"

// PublicQuestion is the learner facing rendition of a Question: answer keys are
// stripped, fill_blank templates masked and matching right items shuffled when
// the question asks for it.
type PublicQuestion struct {
	ID            string       `json:"id"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	Points        float64      `json:"points"`
	Order         int          `json:"order"`
	Options       []string     `json:"options,omitempty"`
	AllowMultiple bool         `json:"allow_multiple,omitempty"`
	LeftItems     []string     `json:"left_items,omitempty"`
	RightItems    []string     `json:"right_items,omitempty"`
	Template      string       `json:"template,omitempty"`
	BlankCount    int          `json:"blank_count,omitempty"`
	Essay         *EssayData   `json:"essay,omitempty"`
	Code          *CodeData    `json:"code,omitempty"`
}

// Public builds the learner view. rng may be nil, in which case nothing is shuffled.
func (q Question) Public(rng *rand.Rand) PublicQuestion {
	p := PublicQuestion{
		ID:     q.ID,
		Text:   q.Text,
		Type:   q.EffectiveType(),
		Points: q.Points,
		Order:  q.Order,
	}
	switch d := q.Data.(type) {
	case ChoiceData:
		p.AllowMultiple = d.AllowMultiple
		for _, o := range d.Options {
			p.Options = append(p.Options, o.Text)
		}
	case MatchingData:
		for _, pair := range d.Pairs {
			p.LeftItems = append(p.LeftItems, pair.LeftItem)
			p.RightItems = append(p.RightItems, pair.RightItem)
		}
		if d.ShuffleItems && rng != nil {
			rng.Shuffle(len(p.RightItems), func(i, j int) {
				p.RightItems[i], p.RightItems[j] = p.RightItems[j], p.RightItems[i]
			})
		}
	case FillBlankData:
		p.Template = MaskTemplate(d.Template)
		p.BlankCount = len(ParseBlanks(d.Template))
	case EssayData:
		essay := d
		p.Essay = &essay
	case CodeData:
		code := d
		p.Code = &code
	}
	return p
}
