package form

import (
	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ===========================
// 📝 Create Form
func (r *Repository) CreateForm(f *Form) error {
	return r.DB.Create(f).Error
}

// ===========================
// 🔍 Get Form By ID
func (r *Repository) GetFormByID(id uint) (*Form, error) {
	var f Form
	if err := r.DB.First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// ===========================
// 📄 List Forms With Pagination & Search
func (r *Repository) ListForms(limit, offset int, search string) ([]Form, int64, error) {
	var forms []Form
	var total int64

	query := r.DB.Model(&Form{})
	if search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&forms).Error
	return forms, total, err
}

// ===========================
// ✏️ Update Form
func (r *Repository) UpdateForm(f *Form) error {
	return r.DB.Save(f).Error
}

// ===========================
// 🗑 Delete Form (hard delete)
func (r *Repository) DeleteForm(id uint) error {
	return r.DB.Delete(&Form{}, id).Error
}
