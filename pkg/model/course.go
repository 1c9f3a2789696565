package model

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	CourseID    uuid.UUID `json:"course_id" db:"course_id"`
	CreatorID   uuid.UUID `json:"creator_id" db:"creator_id"`
	Title       string    `json:"title" db:"title"`
	Subtitle    *string   `json:"subtitle,omitempty" db:"subtitle"`
	Price       float64   `json:"price" db:"price"`
	Thumbnail   *string   `json:"thumbnail,omitempty" db:"thumbnail"`
	IsPublished bool      `json:"is_published" db:"is_published"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Lecture struct {
	LectureID     uuid.UUID `json:"lecture_id" db:"lecture_id"`
	CourseID      uuid.UUID `json:"course_id" db:"course_id"`
	Title         string    `json:"title" db:"title"`
	VideoURL      *string   `json:"video_url,omitempty" db:"video_url"`
	DurationSec   int       `json:"duration_sec" db:"duration_sec"`
	IsPreviewFree bool      `json:"is_preview_free" db:"is_preview_free"`
	Position      int       `json:"position" db:"position"`
}

type CourseDetailRes struct {
	Course    Course     `json:"course"`
	Lectures  []Lecture  `json:"lectures"`
	Purchased *Purchased `json:"purchased"`
}

type Purchased struct {
	Status       PurchaseStatus `json:"status"`
	PurchaseDate time.Time      `json:"purchase_date"`
}
