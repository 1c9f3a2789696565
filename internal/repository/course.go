package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BasavaMaasti/StudyHub/pkg/model"
)

func (r *Repository) GetCourseByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	const q = `
SELECT course_id, creator_id, title, subtitle, price, thumbnail, is_published, created_at, updated_at
FROM courses
WHERE course_id = $1
`
	var c model.Course
	row := r.db.QueryRow(ctx, q, id)
	if err := row.Scan(&c.CourseID, &c.CreatorID, &c.Title, &c.Subtitle, &c.Price, &c.Thumbnail, &c.IsPublished, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan course: %w", err)
	}
	return &c, nil
}

func (r *Repository) ListLecturesByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Lecture, error) {
	const q = `
SELECT lecture_id, course_id, title, video_url, duration_sec, is_preview_free, position
FROM lectures
WHERE course_id = $1
ORDER BY position ASC
`
	rows, err := r.db.Query(ctx, q, courseID)
	if err != nil {
		return nil, fmt.Errorf("query lectures: %w", err)
	}
	defer rows.Close()

	out := make([]model.Lecture, 0, 8)
	for rows.Next() {
		var l model.Lecture
		if err := rows.Scan(&l.LectureID, &l.CourseID, &l.Title, &l.VideoURL, &l.DurationSec, &l.IsPreviewFree, &l.Position); err != nil {
			return nil, fmt.Errorf("scan lecture: %w", err)
		}
		out = append(out, l)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}
	return out, nil
}
