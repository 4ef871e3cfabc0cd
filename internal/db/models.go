package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID        uuid.UUID
	Email     string
	Name      pgtype.Text
	GoogleID  pgtype.Text
	Picture   pgtype.Text
	CreatedAt time.Time
}

type Project struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Description pgtype.Text
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProjectFile struct {
	ID               uuid.UUID
	ProjectID        uuid.UUID
	OriginalFilename string
	FileSize         int64
	MimeType         string
	StorageKey       string
	ExtractedText    pgtype.Text
	UploadedAt       time.Time
}

type Quiz struct {
	ID            uuid.UUID
	ProjectID     uuid.UUID
	Title         string
	Difficulty    string
	QuestionCount int32
	CreatedAt     time.Time
}

type QuizQuestion struct {
	ID            uuid.UUID
	QuizID        uuid.UUID
	QuestionText  string
	QuestionType  string
	Options       []byte
	CorrectAnswer string
	Explanation   pgtype.Text
	QuestionOrder int32
}

type QuizAttempt struct {
	ID                uuid.UUID
	QuizID            uuid.UUID
	UserID            uuid.UUID
	Score             float64
	Answers           []byte
	ValidationResults []byte
	SubmittedAt       time.Time
	RevalidatedAt     pgtype.Timestamptz
}
