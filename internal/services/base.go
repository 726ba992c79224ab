package services

import (
	"context"
	"fmt"
	"reflect"

	"leadcrm/internal/events"
	"leadcrm/internal/permissions"

	"gorm.io/gorm"
)

// ScopeClause narrows a list query to the rows the caller's resolved
// scope allows. Deny never reaches the query; controllers reject it
// with 403 first.
type ScopeClause struct {
	Scope     permissions.Scope
	UserID    string
	CountryID string
}

// Apply adds the ownership/tenancy condition matching the scope. The
// column is picked off the model: assigned_to_id for ownership when
// the model has one, otherwise the row id itself (the users module).
func (sc ScopeClause) Apply(query *gorm.DB, model interface{}) *gorm.DB {
	switch sc.Scope {
	case permissions.ScopeAll:
		return query
	case permissions.ScopeTeam:
		if !hasField(model, "CountryID") {
			// Models without a tenancy column are shared reference
			// data; team narrows nothing.
			return query
		}
		if sc.CountryID == "" {
			return query.Where("1 = 0")
		}
		return query.Where("country_id = ?", sc.CountryID)
	case permissions.ScopeSelf:
		if hasField(model, "AssignedToID") {
			return query.Where("assigned_to_id = ?", sc.UserID)
		}
		return query.Where("id = ?", sc.UserID)
	default:
		return query.Where("1 = 0")
	}
}

func isColumnName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func hasField(model interface{}, name string) bool {
	entityType := reflect.TypeOf(model)
	if entityType.Kind() == reflect.Ptr {
		entityType = entityType.Elem()
	}
	_, found := entityType.FieldByName(name)
	return found
}

// BaseService interface defines common CRUD operations
type BaseService[T any] interface {
	Create(ctx context.Context, entity *T, includes ...string) error
	Get(ctx context.Context, id string, includes ...string) (*T, error)
	List(ctx context.Context, page, limit int, filters map[string]interface{}, scope ScopeClause, includes ...string) ([]T, int64, error)
	Update(ctx context.Context, id string, entity *T, includes ...string) error
	Delete(ctx context.Context, id string) error
}

// BaseServiceImpl implements BaseService
type BaseServiceImpl[T any] struct {
	db        *gorm.DB
	modelType T
}

func GormTableName(db *gorm.DB, v any) string {
	struct_name := reflect.TypeOf(v).Name()
	return db.NamingStrategy.TableName(struct_name)
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

func (s *BaseServiceImpl[T]) List(ctx context.Context, page, limit int, filters map[string]interface{}, scope ScopeClause, includes ...string) ([]T, int64, error) {
	var entities []T
	var total int64

	query := s.db.WithContext(ctx).Model(s.modelType)
	query = query.Where("is_deleted = ?", false)
	query = scope.Apply(query, s.modelType)

	for key, value := range filters {
		// Filter keys come from the query string; only plain column
		// identifiers may reach the SQL text.
		if !isColumnName(key) {
			continue
		}
		query = query.Where(key+" = ?", value)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.applyIncludes(query, includes...)

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	if err := query.Order("created_at DESC").Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return entities, total, nil
}

func (s *BaseServiceImpl[T]) Update(ctx context.Context, id string, entity *T, includes ...string) error {
	query := s.db.WithContext(ctx).Model(entity).Where("id = ? AND is_deleted = ?", id, false)
	if err := query.Updates(entity).Error; err != nil {
		return err
	}

	reload := s.applyIncludes(s.db.WithContext(ctx), includes...)
	if err := reload.First(entity, "id = ?", id).Error; err != nil {
		return err
	}

	events.Emit(fmt.Sprintf("%s.updated", GormTableName(s.db, s.modelType)), entity)
	return nil
}

func (s *BaseServiceImpl[T]) Delete(ctx context.Context, id string) error {
	// Soft delete; rows stay behind for the audit trail.
	result := s.db.WithContext(ctx).Model(s.modelType).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{"is_deleted": true, "deleted_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	events.Emit(fmt.Sprintf("%s.deleted", GormTableName(s.db, s.modelType)), id)
	return nil
}
