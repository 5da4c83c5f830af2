package assessment_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edusync/gateway/internal/assessment"
	"github.com/edusync/gateway/internal/domain"
	"github.com/edusync/gateway/internal/errors"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	questions := []domain.Question{
		{
			QuestionText:  "What does TCP stand for?",
			Options:       []string{"Transmission Control Protocol", "Transfer Control Program", "", ""},
			CorrectAnswer: "Transmission Control Protocol",
			Points:        5,
		},
		{
			QuestionText:  "Which layer does IP live in?",
			Options:       []string{"Application", "Transport", "Network", "Link"},
			CorrectAnswer: "Network",
			Points:        3,
		},
		{
			QuestionText:  "Zero-weight question",
			Options:       []string{"Yes", "No", "", ""},
			CorrectAnswer: "Yes",
			Points:        0,
		},
	}

	encoded, err := assessment.EncodeQuestions(questions)
	require.NoError(t, err)

	decoded, err := assessment.DecodeQuestions(encoded)
	require.NoError(t, err)

	require.Equal(t, questions, decoded, "order and field values must survive the round trip")
}

func TestDecodeQuestions(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    []domain.Question
		wantErr bool
	}{
		"invalid syntax fails the whole decode": {
			in:      `[{"questionText": "q1"`,
			wantErr: true,
		},

		"top-level non-array fails": {
			in:      `{"questionText": "q1"}`,
			wantErr: true,
		},

		"missing options normalizes to an empty slice": {
			in:   `[{"questionText":"q1","correctAnswer":"A","points":2}]`,
			want: []domain.Question{{QuestionText: "q1", Options: []string{}, CorrectAnswer: "A", Points: 2}},
		},

		"null options normalizes to an empty slice": {
			in:   `[{"questionText":"q1","options":null,"correctAnswer":"A","points":2}]`,
			want: []domain.Question{{QuestionText: "q1", Options: []string{}, CorrectAnswer: "A", Points: 2}},
		},

		"mistyped options normalizes to an empty slice": {
			in:   `[{"questionText":"q1","options":"not-a-list","correctAnswer":"A","points":2}]`,
			want: []domain.Question{{QuestionText: "q1", Options: []string{}, CorrectAnswer: "A", Points: 2}},
		},

		"empty list decodes to an empty list": {
			in:   `[]`,
			want: []domain.Question{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := assessment.DecodeQuestions(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				require.Equal(t, errors.CodeInvalidArgument, errors.Convert(err).Code)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			for _, q := range got {
				require.NotNil(t, q.Options, "options must always be iterable")
			}
		})
	}
}

func TestValidateQuestions(t *testing.T) {
	valid := domain.Question{
		QuestionText:  "q",
		Options:       []string{"A", "B", "", ""},
		CorrectAnswer: "A",
		Points:        1,
	}

	require.NoError(t, assessment.ValidateQuestions([]domain.Question{valid}))
	require.NoError(t, assessment.ValidateQuestions(nil))

	missing := valid
	missing.CorrectAnswer = "Z"
	require.Error(t, assessment.ValidateQuestions([]domain.Question{missing}))

	empty := valid
	empty.CorrectAnswer = ""
	require.Error(t, assessment.ValidateQuestions([]domain.Question{empty}))

	negative := valid
	negative.Points = -1
	require.Error(t, assessment.ValidateQuestions([]domain.Question{negative}))
}
