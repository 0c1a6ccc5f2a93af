package rentals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/borrowhub/borrowhub-backend/pkg/db/models"
	"github.com/borrowhub/borrowhub-backend/pkg/enums"
)

// Repository manages persistence for rentals and the reads the state
// machine needs around them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rental *models.Rental) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Rental, error)
	// FindByIDForUpdate loads the rental with a row lock. Transitions must
	// use it inside their transaction so concurrent writers serialize
	// instead of overwriting each other's full-row saves.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Rental, error)
	FindByGatewayOrderIDForUpdate(ctx context.Context, orderID string) (*models.Rental, error)
	Save(ctx context.Context, rental *models.Rental) error
	ListByParticipant(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]models.Rental, error)
	// ListBlocking returns rentals whose status reserves the item and whose
	// date range overlaps the half-open window [start, end).
	ListBlocking(ctx context.Context, itemID uuid.UUID, start, end time.Time) ([]models.Rental, error)
	FindItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	IncrementUserBalance(ctx context.Context, userID uuid.UUID, deltaCents int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a rental repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, rental *models.Rental) error {
	return r.db.WithContext(ctx).Create(rental).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Rental, error) {
	var rental models.Rental
	if err := r.db.WithContext(ctx).First(&rental, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Rental, error) {
	var rental models.Rental
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rental, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *repository) FindByGatewayOrderIDForUpdate(ctx context.Context, orderID string) (*models.Rental, error) {
	var rental models.Rental
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rental, "gateway_order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *repository) Save(ctx context.Context, rental *models.Rental) error {
	return r.db.WithContext(ctx).Save(rental).Error
}

func (r *repository) ListByParticipant(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]models.Rental, error) {
	query := r.db.WithContext(ctx)
	if filter.Role != nil {
		switch *filter.Role {
		case enums.RentalRoleOwner:
			query = query.Where("owner_id = ?", userID)
		case enums.RentalRoleRenter:
			query = query.Where("renter_id = ?", userID)
		}
	} else {
		query = query.Where("owner_id = ? OR renter_id = ?", userID, userID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var rentals []models.Rental
	if err := query.Order("created_at DESC").Limit(limit).Find(&rentals).Error; err != nil {
		return nil, err
	}
	return rentals, nil
}

func (r *repository) ListBlocking(ctx context.Context, itemID uuid.UUID, start, end time.Time) ([]models.Rental, error) {
	blocking := []enums.RentalStatus{
		enums.RentalStatusApproved,
		enums.RentalStatusAwaitingHandover,
		enums.RentalStatusActive,
	}
	var rentals []models.Rental
	if err := r.db.WithContext(ctx).
		Where("item_id = ? AND status IN ?", itemID, blocking).
		Where("requested_start < ? AND requested_end > ?", end, start).
		Find(&rentals).Error; err != nil {
		return nil, err
	}
	return rentals, nil
}

func (r *repository) FindItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) IncrementUserBalance(ctx context.Context, userID uuid.UUID, deltaCents int64) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("wallet_balance_cents", gorm.Expr("wallet_balance_cents + ?", deltaCents)).Error
}
