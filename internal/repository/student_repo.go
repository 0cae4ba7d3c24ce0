package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/edverse/campus-api/internal/models"
)

// StudentFilter narrows student queries.
type StudentFilter struct {
	Class   string
	Section string
	Status  string
	Search  string
}

// StudentRepository provides access to student records.
type StudentRepository interface {
	List(ctx context.Context, filter StudentFilter) ([]models.Student, error)
	GetByID(ctx context.Context, id uint) (models.Student, error)
	ListRoster(ctx context.Context, exam models.Exam) ([]models.Student, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) List(ctx context.Context, filter StudentFilter) ([]models.Student, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{})

	if filter.Class != "" {
		query = query.Where("class = ?", filter.Class)
	}

	if filter.Section != "" {
		query = query.Where("section = ?", filter.Section)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var students []models.Student
	if err := query.Order("name ASC").Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

// ListRoster returns the students eligible for grading against the exam:
// active, in the exam's class, and in the exam's section when it has one.
func (r *studentRepository) ListRoster(ctx context.Context, exam models.Exam) ([]models.Student, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("status = ?", models.StudentStatusActive).
		Where("class = ?", exam.Class)

	if exam.Section != "" {
		query = query.Where("section = ?", exam.Section)
	}

	var students []models.Student
	if err := query.Order("name ASC").Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}
