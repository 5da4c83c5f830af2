package assessment

import (
	"encoding/json"

	"github.com/edusync/gateway/internal/domain"
	"github.com/edusync/gateway/internal/errors"
)

// EncodeQuestions serializes an ordered question list into the transport
// string stored in an assessment's questions field.
func EncodeQuestions(questions []domain.Question) (string, error) {
	b, err := json.Marshal(questions)
	if err != nil {
		return "", errors.Internal(err)
	}

	return string(b), nil
}

// DecodeQuestions parses a transport string back into an ordered question
// list. Order and field values survive an encode/decode round trip untouched.
// Invalid syntax fails the whole decode; there is no partial result.
func DecodeQuestions(s string) ([]domain.Question, error) {
	var raw []wireQuestion
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("malformed assessment questions"),
			errors.WithCause(err))
	}

	questions := make([]domain.Question, 0, len(raw))
	for _, q := range raw {
		questions = append(questions, domain.Question{
			QuestionText:  q.QuestionText,
			Options:       q.options(),
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
		})
	}

	return questions, nil
}

// wireQuestion tolerates a missing, null or mistyped options field. Rendering
// and scoring require options to always be an iterable slice.
type wireQuestion struct {
	QuestionText  string          `json:"questionText"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer string          `json:"correctAnswer"`
	Points        int             `json:"points"`
}

func (q wireQuestion) options() []string {
	var opts []string
	if len(q.Options) == 0 || json.Unmarshal(q.Options, &opts) != nil || opts == nil {
		return []string{}
	}

	return opts
}

// ValidateQuestions checks the structural invariant on authored questions:
// every question names a non-empty correct answer that appears verbatim among
// its options, and carries a non-negative point weight.
func ValidateQuestions(questions []domain.Question) error {
	for i, q := range questions {
		if q.Points < 0 {
			return errors.New(errors.CodeInvalidArgument,
				errors.WithMessagef("question %d: negative points", i))
		}

		if q.CorrectAnswer == "" {
			return errors.New(errors.CodeInvalidArgument,
				errors.WithMessagef("question %d: empty correct answer", i))
		}

		found := false
		for _, opt := range q.Options {
			if opt == q.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return errors.New(errors.CodeInvalidArgument,
				errors.WithMessagef("question %d: correct answer is not among the options", i))
		}
	}

	return nil
}
