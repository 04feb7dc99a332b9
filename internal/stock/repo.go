package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rmoralesp/fieldstock-backend/pkg/db/models"
	"github.com/rmoralesp/fieldstock-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stock repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindBranch(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	var branch models.Branch
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&branch).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *repository) ListBranches(ctx context.Context) ([]models.Branch, error) {
	var branches []models.Branch
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindBalance(ctx context.Context, branchID, productID uuid.UUID) (*models.BranchStock, error) {
	var balance models.BranchStock
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND product_id = ?", branchID, productID).
		First(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *repository) FindBalanceForUpdate(ctx context.Context, branchID, productID uuid.UUID) (*models.BranchStock, error) {
	query := r.db.WithContext(ctx)
	// sqlite rejects FOR UPDATE; its single-writer transactions already
	// serialize the read-modify-write.
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var balance models.BranchStock
	err := query.
		Where("branch_id = ? AND product_id = ?", branchID, productID).
		First(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *repository) SaveBalance(ctx context.Context, balance *models.BranchStock) error {
	return r.db.WithContext(ctx).Save(balance).Error
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovements(ctx context.Context, branchID, productID uuid.UUID, q MovementQuery) (*MovementList, error) {
	limit := pagination.NormalizeLimit(q.Limit)

	query := r.db.WithContext(ctx).
		Where("branch_id = ? AND product_id = ?", branchID, productID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(q.Limit))

	if q.Cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			q.Cursor.CreatedAt, q.Cursor.CreatedAt, q.Cursor.ID,
		)
	}

	var movements []models.StockMovement
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}

	list := &MovementList{Movements: movements}
	if len(movements) > limit {
		list.Movements = movements[:limit]
		last := list.Movements[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) lowStockQuery(ctx context.Context, branchID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("branch_stocks").
		Joins("JOIN products ON products.id = branch_stocks.product_id").
		Where("branch_stocks.branch_id = ?", branchID).
		Where("branch_stocks.current_stock <= branch_stocks.min_stock_alert")
}

func (r *repository) ListLowStock(ctx context.Context, branchID uuid.UUID) ([]LowStockEntry, error) {
	var entries []LowStockEntry
	err := r.lowStockQuery(ctx, branchID).
		Select("branch_stocks.product_id, products.name AS product_name, products.sku, branch_stocks.current_stock, branch_stocks.min_stock_alert").
		Order("products.name ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) CountLowStock(ctx context.Context, branchID uuid.UUID) (int64, error) {
	var count int64
	if err := r.lowStockQuery(ctx, branchID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) FindUserNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var users []models.User
	err := r.db.WithContext(ctx).
		Select("id, name").
		Where("id IN ?", ids).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}
