package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edverse/campus-api/internal/models"
)

// GradeFilter narrows grade queries.
type GradeFilter struct {
	ExamID    *uint
	StudentID *uint
	Class     string
	Semester  string
}

// GradeRepository defines data operations for grade records.
type GradeRepository interface {
	List(ctx context.Context, filter GradeFilter) ([]models.Grade, error)
	GetByID(ctx context.Context, id uint) (models.Grade, error)
	GetByStudentAndExam(ctx context.Context, studentID, examID uint) (models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id uint) error
	SaveBatch(ctx context.Context, updates, inserts []models.Grade) error
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository instantiates the repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Grade{}).
		Preload("Student").
		Preload("Exam")
}

func (r *gradeRepository) List(ctx context.Context, filter GradeFilter) ([]models.Grade, error) {
	query := r.baseQuery(ctx)

	if filter.ExamID != nil {
		query = query.Where("exam_id = ?", *filter.ExamID)
	}

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.Class != "" || filter.Semester != "" {
		query = query.Joins("JOIN exams ON exams.id = grades.exam_id")
		if filter.Class != "" {
			query = query.Where("exams.class = ?", filter.Class)
		}
		if filter.Semester != "" {
			query = query.Where("exams.semester = ?", filter.Semester)
		}
	}

	var grades []models.Grade
	if err := query.Order("grades.created_at DESC").Find(&grades).Error; err != nil {
		return nil, err
	}

	return grades, nil
}

func (r *gradeRepository) GetByID(ctx context.Context, id uint) (models.Grade, error) {
	var grade models.Grade
	if err := r.baseQuery(ctx).First(&grade, id).Error; err != nil {
		return models.Grade{}, err
	}

	return grade, nil
}

func (r *gradeRepository) GetByStudentAndExam(ctx context.Context, studentID, examID uint) (models.Grade, error) {
	var grade models.Grade
	if err := r.baseQuery(ctx).
		Where("student_id = ?", studentID).
		Where("exam_id = ?", examID).
		First(&grade).Error; err != nil {
		return models.Grade{}, err
	}

	return grade, nil
}

func (r *gradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	return r.db.WithContext(ctx).Create(grade).Error
}

func (r *gradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	return r.db.WithContext(ctx).Save(grade).Error
}

func (r *gradeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Grade{}, id).Error
}

// SaveBatch persists the reconciled partitions in one transaction so a
// failure mid-batch never leaves the exam half written.
func (r *gradeRepository) SaveBatch(ctx context.Context, updates, inserts []models.Grade) error {
	if len(updates) == 0 && len(inserts) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range updates {
			if err := tx.Model(&models.Grade{}).
				Where("id = ?", updates[i].ID).
				Updates(map[string]interface{}{
					"marks_obtained": updates[i].MarksObtained,
					"percentage":     updates[i].Percentage,
					"gpa":            updates[i].GPA,
					"letter_grade":   updates[i].LetterGrade,
					"date":           updates[i].Date,
				}).Error; err != nil {
				return err
			}
		}

		if len(inserts) > 0 {
			if err := tx.Omit("Student", "Exam").Create(&inserts).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
