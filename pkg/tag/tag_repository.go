package tag

import (
	"context"
	"strings"

	"github.com/bizfish/tag-a-meal-app/entities"
	"github.com/bizfish/tag-a-meal-app/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	TagRepository interface {
		ListTags(ctx context.Context, p database.Principal, search string, offset, limit int) ([]*entities.Tag, int64, error)
		PopularTags(ctx context.Context, p database.Principal, limit int) ([]TagUsage, error)
		GetTagByID(ctx context.Context, p database.Principal, id uuid.UUID) (*entities.Tag, error)
		GetTagByName(ctx context.Context, p database.Principal, name string) (*entities.Tag, error)
		NameTaken(ctx context.Context, p database.Principal, name string, exceptID uuid.UUID) (bool, error)
		CreateTag(ctx context.Context, p database.Principal, tag *entities.Tag) error
		UpdateTag(ctx context.Context, p database.Principal, id uuid.UUID, updates map[string]any) (*entities.Tag, error)
		DeleteTag(ctx context.Context, p database.Principal, id uuid.UUID) error
		CountUsage(ctx context.Context, p database.Principal, id uuid.UUID) (int64, error)
		GetPublicUsage(ctx context.Context, p database.Principal, id uuid.UUID) ([]UsageRow, error)
	}

	tagRepository struct {
		gw database.Gateway
	}

	TagUsage struct {
		ID         uuid.UUID
		Name       string
		Color      string
		UsageCount int64
	}

	UsageRow struct {
		RecipeID uuid.UUID
		Title    string
	}
)

func NewTagRepository(gw database.Gateway) TagRepository {
	return &tagRepository{gw: gw}
}

func searchName(tx *gorm.DB, search string) *gorm.DB {
	if s := strings.TrimSpace(search); s != "" {
		return tx.Where(database.LowerLike("name"), database.ContainsPattern(s))
	}
	return tx
}

func (r *tagRepository) ListTags(ctx context.Context, p database.Principal, search string, offset, limit int) ([]*entities.Tag, int64, error) {
	var tags []*entities.Tag
	var count int64

	db := r.gw.Client(ctx, p)
	if err := searchName(db.Model(&entities.Tag{}), search).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	tx := searchName(db, search).Order("name ASC")
	if limit > 0 {
		tx = tx.Offset(offset).Limit(limit)
	}
	if err := tx.Find(&tags).Error; err != nil {
		return nil, 0, err
	}
	return tags, count, nil
}

// PopularTags ranks tags by how many recipes carry them, unused tags last.
func (r *tagRepository) PopularTags(ctx context.Context, p database.Principal, limit int) ([]TagUsage, error) {
	tags := []TagUsage{}
	err := r.gw.Client(ctx, p).
		Table("tags").
		Select("tags.id AS id, tags.name AS name, tags.color AS color, COUNT(rt.tag_id) AS usage_count").
		Joins("LEFT JOIN recipe_tags rt ON rt.tag_id = tags.id").
		Group("tags.id, tags.name, tags.color").
		Order("usage_count DESC, tags.name ASC").
		Limit(limit).
		Scan(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *tagRepository) GetTagByID(ctx context.Context, p database.Principal, id uuid.UUID) (*entities.Tag, error) {
	var tag entities.Tag
	if err := r.gw.Client(ctx, p).Where("id = ?", id).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) GetTagByName(ctx context.Context, p database.Principal, name string) (*entities.Tag, error) {
	var tag entities.Tag
	if err := r.gw.Client(ctx, p).Where("name = ?", name).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) NameTaken(ctx context.Context, p database.Principal, name string, exceptID uuid.UUID) (bool, error) {
	var count int64
	err := r.gw.Client(ctx, p).
		Model(&entities.Tag{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Count(&count).Error
	return count > 0, err
}

func (r *tagRepository) CreateTag(ctx context.Context, p database.Principal, tag *entities.Tag) error {
	return r.gw.Client(ctx, p).Create(tag).Error
}

func (r *tagRepository) UpdateTag(ctx context.Context, p database.Principal, id uuid.UUID, updates map[string]any) (*entities.Tag, error) {
	var tag entities.Tag
	err := r.gw.Transaction(ctx, p, func(tx *gorm.DB) error {
		res := tx.Model(&entities.Tag{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ?", id).First(&tag).Error
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepository) DeleteTag(ctx context.Context, p database.Principal, id uuid.UUID) error {
	res := r.gw.Client(ctx, p).Where("id = ?", id).Delete(&entities.Tag{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *tagRepository) CountUsage(ctx context.Context, p database.Principal, id uuid.UUID) (int64, error) {
	var count int64
	err := r.gw.Client(ctx, p).
		Model(&entities.RecipeTag{}).
		Where("tag_id = ?", id).
		Count(&count).Error
	return count, err
}

func (r *tagRepository) GetPublicUsage(ctx context.Context, p database.Principal, id uuid.UUID) ([]UsageRow, error) {
	rows := []UsageRow{}
	err := r.gw.Client(ctx, p).
		Table("recipe_tags AS rt").
		Select("r.id AS recipe_id, r.title AS title").
		Joins("JOIN recipes r ON r.id = rt.recipe_id").
		Where("rt.tag_id = ? AND r.is_public = ?", id, true).
		Order("r.title ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
