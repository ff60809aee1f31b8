package db

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// QuizContent is the single quiz document shape, written by enrichment and
// read back by the API.
type QuizContent struct {
	Question    string       `json:"question" validate:"required"`
	Options     []QuizOption `json:"options" validate:"len=4,dive"`
	Answer      QuizOption   `json:"answer"`
	Explanation string       `json:"explanation"`
}

// QuizOption is a numbered choice; the answer reuses the same shape.
type QuizOption struct {
	ID   OptionID `json:"id" validate:"min=1,max=4"`
	Text string   `json:"text" validate:"required"`
}

// OptionID accepts 3, "3" and "3. text" since models are loose about it.
type OptionID int

func (o *OptionID) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*o = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
		if end >= 0 {
			s = s[:end]
		}
		raw = s
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid option id %s", string(b))
	}
	*o = OptionID(n)
	return nil
}

// Decode parses the stored quiz document.
func (q *Quiz) Decode() (QuizContent, error) {
	var c QuizContent
	if err := json.Unmarshal(q.Content, &c); err != nil {
		return c, fmt.Errorf("failed to decode quiz %d: %w", q.ID, err)
	}
	return c, nil
}
