package services

import (
	"assse/internal/events"
	"context"
	"fmt"
	"reflect"
	"time"

	"gorm.io/gorm"
)

// BaseService interface defines common CRUD operations
type BaseService[T any] interface {
	Create(ctx context.Context, entity *T, includes ...string) error
	Get(ctx context.Context, id string, includes ...string) (*T, error)
	List(ctx context.Context, page PageParams, filters map[string]interface{}, match map[string]string, sortFields []string, order string, includes ...string) ([]T, int64, error)
	Update(ctx context.Context, id string, entity *T, includes ...string) error
	Delete(ctx context.Context, id string) error
}

// ColumnSelector is implemented by models whose flag columns must reach the
// UPDATE statement even when false. A struct-based update drops zero-value
// fields, so clearing a flag would otherwise never be written.
type ColumnSelector interface {
	UpdateColumns() []string
}

// BaseServiceImpl implements BaseService on top of the hosted store.
type BaseServiceImpl[T any] struct {
	db        *gorm.DB
	modelType T
}

func GormTableName(db *gorm.DB, v any) string {
	structName := reflect.TypeOf(v).Name()
	return db.NamingStrategy.TableName(structName)
}

// NewBaseService creates a new base service
func NewBaseService[T any](db *gorm.DB, modelType T) BaseService[T] {
	return &BaseServiceImpl[T]{
		db:        db,
		modelType: modelType,
	}
}

// applyIncludes adds preload statements to the query for each include
func (s *BaseServiceImpl[T]) applyIncludes(query *gorm.DB, includes ...string) *gorm.DB {
	for _, include := range includes {
		query = query.Preload(include)
	}
	return query
}

func (s *BaseServiceImpl[T]) Create(ctx context.Context, entity *T, includes ...string) error {
	if err := s.db.WithContext(ctx).Create(entity).Error; err != nil {
		return err
	}

	// Reload the entity with includes if any are specified
	if len(includes) > 0 {
		if err := s.applyIncludes(s.db.WithContext(ctx), includes...).First(entity, "id = ?", reflect.ValueOf(*entity).FieldByName("ID").String()).Error; err != nil {
			return err
		}
	}

	events.Emit(fmt.Sprintf("%s.created", GormTableName(s.db, s.modelType)), entity)

	return nil
}

func (s *BaseServiceImpl[T]) Get(ctx context.Context, id string, includes ...string) (*T, error) {
	var entity T
	query := s.db.WithContext(ctx)
	query = s.applyIncludes(query, includes...)

	// filter deleted entities
	query = query.Where("is_deleted = ?", false)

	if err := query.First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// List returns one page of entities and the total row count. Equality
// filters and substring matches are combined with AND.
func (s *BaseServiceImpl[T]) List(ctx context.Context, page PageParams, filters map[string]interface{}, match map[string]string, sortFields []string, order string, includes ...string) ([]T, int64, error) {
	var entities []T
	var total int64

	page = page.Normalize()

	query := s.db.WithContext(ctx).Model(s.modelType)

	for key, value := range filters {
		query = query.Where(key+" = ?", value)
	}
	for key, value := range match {
		query = query.Where(key+" ILIKE ?", "%"+value+"%")
	}

	// filter deleted entities
	query = query.Where("is_deleted = ?", false)

	// Count over the filtered set before windowing
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.applyIncludes(query, includes...)
	query = query.Offset(page.Offset()).Limit(page.Limit)

	if len(sortFields) > 0 {
		if order != "asc" && order != "desc" {
			order = "asc"
		}
		query = query.Order(fmt.Sprintf("%s %s", sortFields[0], order))
	}

	if err := query.Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return entities, total, nil
}

func (s *BaseServiceImpl[T]) Update(ctx context.Context, id string, entity *T, includes ...string) error {
	query := s.db.WithContext(ctx).Model(entity).Where("id = ? AND is_deleted = ?", id, false).Omit("id")
	if sel, ok := any(entity).(ColumnSelector); ok {
		query = query.Select(sel.UpdateColumns())
	}
	if err := query.Updates(entity).Error; err != nil {
		return err
	}

	// Reload the entity with includes if any are specified
	if len(includes) > 0 {
		if err := s.applyIncludes(s.db.WithContext(ctx), includes...).First(entity, "id = ?", id).Error; err != nil {
			return err
		}
	}

	events.Emit(fmt.Sprintf("%s.updated", GormTableName(s.db, s.modelType)), entity)

	return nil
}

func (s *BaseServiceImpl[T]) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Model(s.modelType).Where("id = ? AND is_deleted = ?", id, false).Update("deleted_at", time.Now()).Update("is_deleted", true).Error; err != nil {
		return err
	}

	events.Emit(fmt.Sprintf("%s.deleted", GormTableName(s.db, s.modelType)), id)

	return nil
}
