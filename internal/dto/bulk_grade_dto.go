package dto

// BulkGradeRequest carries the sparse map of marks entered for an exam,
// keyed by student id. Values are raw strings exactly as typed: blanks and
// partial entries are tolerated and reported as skipped rows.
type BulkGradeRequest struct {
	Marks map[uint]string `json:"marks" validate:"required,min=1"`
}

// SkippedRow explains why a single student's entry produced no write.
type SkippedRow struct {
	StudentID uint   `json:"student_id"`
	Entered   string `json:"entered"`
	Reason    string `json:"reason"`
}

// BulkGradeResponse summarizes the outcome of a bulk grade entry.
type BulkGradeResponse struct {
	ExamID   uint         `json:"exam_id"`
	Saved    int          `json:"saved"`
	Updated  int          `json:"updated"`
	Inserted int          `json:"inserted"`
	Skipped  []SkippedRow `json:"skipped"`
}

// GradePrefillResponse returns existing marks for an exam formatted as entry
// strings, so re-opening bulk entry shows current values and edits route to
// updates rather than duplicate inserts.
type GradePrefillResponse struct {
	ExamID uint            `json:"exam_id"`
	Marks  map[uint]string `json:"marks"`
}
