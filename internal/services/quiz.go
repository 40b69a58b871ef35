package services

import (
	"errors"
	"fmt"

	"github.com/example/speakci/internal/models"
)

var (
	ErrEmptyBank         = errors.New("question bank is empty")
	ErrOutOfSequence     = errors.New("questions must be answered in order")
	ErrAttemptComplete   = errors.New("every question has already been answered")
	ErrAttemptIncomplete = errors.New("attempt is not finished")
	ErrInvalidOption     = errors.New("answer option out of range")
)

// Question is one level-test item.
type Question struct {
	Prompt       string                  `json:"prompt"`
	Sentence     string                  `json:"sentence,omitempty"`
	Options      []string                `json:"options"`
	CorrectIndex int                     `json:"-"`
	Difficulty   models.Difficulty       `json:"difficulty"`
	Category     models.QuestionCategory `json:"category"`
}

// QuestionFromModel converts a stored question.
func QuestionFromModel(q models.QuizQuestion) Question {
	return Question{
		Prompt:       q.Prompt,
		Sentence:     q.Sentence,
		Options:      append([]string(nil), q.Options...),
		CorrectIndex: q.CorrectIndex,
		Difficulty:   q.Difficulty,
		Category:     q.Category,
	}
}

// FilterQuestions keeps the active questions matching difficulty and category,
// in bank order. Empty filters match everything.
func FilterQuestions(bank []models.QuizQuestion, difficulty models.Difficulty, category models.QuestionCategory) []Question {
	out := make([]Question, 0, len(bank))
	for _, q := range bank {
		if !q.IsActive {
			continue
		}
		if difficulty != "" && q.Difficulty != difficulty {
			continue
		}
		if category != "" && q.Category != category {
			continue
		}
		out = append(out, QuestionFromModel(q))
	}
	return out
}

// Band is the proficiency level derived from a score.
type Band int

const (
	BandA1 Band = iota
	BandA2
	BandB1
	BandB2
	BandC1
)

// Label returns the band name shown with the result.
func (b Band) Label() string {
	switch b {
	case BandA1:
		return "A1 Beginner"
	case BandA2:
		return "A2 Elementary"
	case BandB1:
		return "B1 Intermediate"
	case BandB2:
		return "B2 Upper-Intermediate"
	case BandC1:
		return "C1 Advanced"
	}
	return fmt.Sprintf("Band(%d)", int(b))
}

// Description returns the advice shown under the result.
func (b Band) Description() string {
	switch b {
	case BandA1:
		return "C'est le début de votre aventure ! Notre coaching est fait pour vous."
	case BandA2:
		return "Vous avez les bases. Le coaching vous aidera à progresser rapidement."
	case BandB1:
		return "Bon début ! Vous pouvez progresser avec notre coaching."
	case BandB2:
		return "Très bien ! Vous avez un bon niveau d'anglais."
	case BandC1:
		return "Excellent ! Vous avez un niveau avancé en anglais."
	}
	return ""
}

func (b Band) MarshalText() ([]byte, error) {
	return []byte(b.Label()), nil
}

var bandThresholds = []struct {
	percent int
	band    Band
}{
	{90, BandC1},
	{70, BandB2},
	{50, BandB1},
	{30, BandA2},
}

// BandFor maps score out of total to a band. Each threshold includes its
// lower bound and the first match wins.
func BandFor(score, total int) Band {
	if total <= 0 {
		return BandA1
	}
	for _, t := range bandThresholds {
		if score*100 >= t.percent*total {
			return t.band
		}
	}
	return BandA1
}

// Result is the outcome of a finished attempt.
type Result struct {
	Score       int     `json:"score"`
	Total       int     `json:"total"`
	Percentage  float64 `json:"percentage"`
	Band        Band    `json:"level"`
	Description string  `json:"description"`
}

// Attempt collects one answer per question in a single forward pass.
type Attempt struct {
	questions []Question
	answers   []int
}

// NewAttempt starts an attempt on questions.
func NewAttempt(questions []Question) (*Attempt, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyBank
	}
	return &Attempt{
		questions: questions,
		answers:   make([]int, 0, len(questions)),
	}, nil
}

// Len returns the number of questions.
func (a *Attempt) Len() int { return len(a.questions) }

// Current returns the index and question awaiting an answer.
func (a *Attempt) Current() (int, Question, bool) {
	if a.Done() {
		return len(a.questions), Question{}, false
	}
	i := len(a.answers)
	return i, a.questions[i], true
}

// Answer records option for question index, which must be the current one.
func (a *Attempt) Answer(index, option int) error {
	if a.Done() {
		return ErrAttemptComplete
	}
	if index != len(a.answers) {
		return ErrOutOfSequence
	}
	if option < 0 || option >= len(a.questions[index].Options) {
		return ErrInvalidOption
	}
	a.answers = append(a.answers, option)
	return nil
}

// Done reports whether every question has an answer.
func (a *Attempt) Done() bool {
	return len(a.answers) == len(a.questions)
}

// Score counts correct answers so far.
func (a *Attempt) Score() int {
	score := 0
	for i, ans := range a.answers {
		if ans == a.questions[i].CorrectIndex {
			score++
		}
	}
	return score
}

// Result returns the final score and band.
func (a *Attempt) Result() (Result, error) {
	if !a.Done() {
		return Result{}, ErrAttemptIncomplete
	}
	score, total := a.Score(), len(a.questions)
	band := BandFor(score, total)
	return Result{
		Score:       score,
		Total:       total,
		Percentage:  float64(score) * 100 / float64(total),
		Band:        band,
		Description: band.Description(),
	}, nil
}

// Restart clears every answer.
func (a *Attempt) Restart() {
	a.answers = a.answers[:0]
}

// ScoreAnswers replays answers in order through a fresh attempt.
func ScoreAnswers(questions []Question, answers []int) (Result, error) {
	a, err := NewAttempt(questions)
	if err != nil {
		return Result{}, err
	}
	if len(answers) > len(questions) {
		return Result{}, ErrAttemptComplete
	}
	for i, opt := range answers {
		if err := a.Answer(i, opt); err != nil {
			return Result{}, err
		}
	}
	return a.Result()
}

// DefaultQuestionBank returns the built-in 25 question level test.
func DefaultQuestionBank() []models.QuizQuestion {
	type item struct {
		prompt, sentence string
		options          []string
		correct          int
		difficulty       models.Difficulty
		category         models.QuestionCategory
	}
	const (
		g = models.CategoryGrammar
		v = models.CategoryVocabulary
	)
	items := []item{
		{"What is the correct form of the verb?", "She ___ to the store yesterday.", []string{"go", "goes", "went", "going"}, 2, models.DifficultyA1, g},
		{"Choose the correct article:", "___ apple a day keeps the doctor away.", []string{"A", "An", "The", "No article"}, 1, models.DifficultyA1, g},
		{"Which word is a synonym of 'happy'?", "", []string{"Sad", "Joyful", "Angry", "Tired"}, 1, models.DifficultyA1, v},
		{"Complete the sentence:", "If I ___ rich, I would travel the world.", []string{"am", "was", "were", "be"}, 2, models.DifficultyB1, g},
		{"Choose the correct preposition:", "I'm interested ___ learning English.", []string{"in", "on", "at", "for"}, 0, models.DifficultyA2, g},
		{"What is the plural of 'child'?", "", []string{"Childs", "Childes", "Children", "Childrens"}, 2, models.DifficultyA1, v},
		{"Select the correct tense:", "By next year, I ___ English for 5 years.", []string{"will study", "will be studying", "will have studied", "study"}, 2, models.DifficultyB2, g},
		{"Choose the correct word:", "There are ___ people at the party.", []string{"much", "many", "a lot", "few of"}, 1, models.DifficultyA2, g},
		{"What does 'postpone' mean?", "", []string{"Cancel", "Delay", "Start", "Finish"}, 1, models.DifficultyB1, v},
		{"Choose the correct conditional:", "If it rains tomorrow, we ___ inside.", []string{"stay", "stayed", "will stay", "would stay"}, 2, models.DifficultyB1, g},
		{"What is the past participle of 'write'?", "", []string{"Wrote", "Written", "Writing", "Writed"}, 1, models.DifficultyA2, g},
		{"Choose the correct word:", "She speaks English ___.", []string{"good", "well", "goodly", "better"}, 1, models.DifficultyA2, g},
		{"Complete the sentence:", "I have been waiting ___ two hours.", []string{"since", "for", "during", "while"}, 1, models.DifficultyB1, g},
		{"What is the opposite of 'expensive'?", "", []string{"Rich", "Cheap", "Poor", "Free"}, 1, models.DifficultyA1, v},
		{"Choose the correct form:", "He suggested ___ a movie.", []string{"to watch", "watching", "watch", "watched"}, 1, models.DifficultyB2, g},
		{"What does 'nevertheless' mean?", "", []string{"Therefore", "However", "Because", "Although"}, 1, models.DifficultyC1, v},
		{"Choose the correct sentence:", "", []string{"She don't like coffee.", "She doesn't likes coffee.", "She doesn't like coffee.", "She not like coffee."}, 2, models.DifficultyA2, g},
		{"Complete with the correct pronoun:", "This book is ___. I bought it yesterday.", []string{"my", "me", "mine", "I"}, 2, models.DifficultyA2, g},
		{"What is a synonym of 'begin'?", "", []string{"End", "Start", "Stop", "Finish"}, 1, models.DifficultyA1, v},
		{"Choose the correct comparative:", "This car is ___ than that one.", []string{"more fast", "faster", "most fast", "fastest"}, 1, models.DifficultyA2, g},
		{"Complete the sentence:", "I wish I ___ speak French fluently.", []string{"can", "could", "will", "would"}, 1, models.DifficultyB2, g},
		{"What does 'approximately' mean?", "", []string{"Exactly", "About", "Never", "Always"}, 1, models.DifficultyB1, v},
		{"Choose the correct passive form:", "The cake ___ by my mother.", []string{"baked", "was baked", "is baking", "bakes"}, 1, models.DifficultyB1, g},
		{"Complete with the correct modal:", "You ___ wear a seatbelt in the car.", []string{"must", "can", "might", "could"}, 0, models.DifficultyA2, g},
		{"What is the meaning of 'to accomplish'?", "", []string{"To fail", "To achieve", "To forget", "To ignore"}, 1, models.DifficultyB2, v},
	}

	bank := make([]models.QuizQuestion, len(items))
	for i, it := range items {
		bank[i] = models.QuizQuestion{
			Prompt:       it.prompt,
			Sentence:     it.sentence,
			Options:      it.options,
			CorrectIndex: it.correct,
			Difficulty:   it.difficulty,
			Category:     it.category,
			IsActive:     true,
			DisplayOrder: i + 1,
		}
	}
	return bank
}
