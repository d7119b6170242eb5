package diagnostictest

import (
	"context"

	"gorm.io/gorm"

	"github.com/diagtrack/diagtrack/internal/platform/db"
)

type repoGorm struct{ db *gorm.DB }

// NewRepoGorm returns a Repository backed by the ORM session.
func NewRepoGorm(gdb *gorm.DB) Repository {
	return &repoGorm{db: gdb}
}

func (r *repoGorm) Create(ctx context.Context, t *DiagnosticTest) error {
	return db.Classify("create diagnostic test", r.db.WithContext(ctx).Create(t).Error)
}

func (r *repoGorm) GetByID(ctx context.Context, id int64) (*DiagnosticTest, error) {
	var t DiagnosticTest
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, db.Classify("get diagnostic test", err)
	}
	return &t, nil
}

func (r *repoGorm) Update(ctx context.Context, t *DiagnosticTest) error {
	res := r.db.WithContext(ctx).Model(&DiagnosticTest{}).Where("id = ?", t.ID).Updates(map[string]any{
		"test_type":  t.TestType,
		"result":     t.Result,
		"test_date":  t.TestDate,
		"notes":      t.Notes,
		"updated_at": t.UpdatedAt,
	})
	if res.Error != nil {
		return db.Classify("update diagnostic test", res.Error)
	}
	if res.RowsAffected == 0 {
		return db.NotFound("update diagnostic test")
	}
	return nil
}

func (r *repoGorm) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&DiagnosticTest{}, "id = ?", id)
	if res.Error != nil {
		return db.Classify("delete diagnostic test", res.Error)
	}
	if res.RowsAffected == 0 {
		return db.NotFound("delete diagnostic test")
	}
	return nil
}

func (r *repoGorm) List(ctx context.Context) ([]*DiagnosticTest, error) {
	items := []*DiagnosticTest{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, db.Classify("list diagnostic tests", err)
	}
	return items, nil
}

func (r *repoGorm) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&DiagnosticTest{}).Count(&n).Error; err != nil {
		return 0, db.Classify("count diagnostic tests", err)
	}
	return n, nil
}

func (r *repoGorm) First(ctx context.Context) (*DiagnosticTest, error) {
	var t DiagnosticTest
	if err := r.db.WithContext(ctx).Order("id ASC").First(&t).Error; err != nil {
		return nil, db.Classify("first diagnostic test", err)
	}
	return &t, nil
}

func (r *repoGorm) Ping(ctx context.Context) error {
	var alive int
	err := r.db.WithContext(ctx).Raw("SELECT 1 AS alive").Scan(&alive).Error
	return db.Classify("ping database", err)
}
