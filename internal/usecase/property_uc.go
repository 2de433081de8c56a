package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"realestate-marketplace/internal/domain"
	"realestate-marketplace/internal/domain/model"
	"realestate-marketplace/internal/domain/ports/repository"
)

// PropertyInput carries the owner-editable listing fields.
type PropertyInput struct {
	Title         string
	Description   string
	Price         int64
	City          string
	IsPromoted    bool
	PromotionTier model.TierType
}

// PropertyUseCase owns every write to a property so the visibility gate runs
// inside the same transaction as the write. Readers can never observe
// is_promoted=true with is_active=false.
type PropertyUseCase interface {
	Create(ctx context.Context, ownerID string, in PropertyInput) (*model.Property, error)
	Update(ctx context.Context, callerID, propertyID string, in PropertyInput) (*model.Property, error)
	Get(ctx context.Context, propertyID string) (*model.Property, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Property, error)

	// Moderation. Serialized against promotion activation by the row lock
	// taken inside the property transaction.
	Approve(ctx context.Context, propertyID, adminID string) (*model.Property, error)
	Reject(ctx context.Context, propertyID, adminID string) (*model.Property, error)
	RequestChanges(ctx context.Context, propertyID, adminID string) (*model.Property, error)
}

var _ PropertyUseCase = (*propertyUC)(nil)

type propertyUC struct {
	props repository.PropertyRepository
	users repository.UserRepository
	tx    repository.TransactionManager
	log   *zerolog.Logger
}

func NewPropertyUseCase(props repository.PropertyRepository, users repository.UserRepository, tx repository.TransactionManager, logger *zerolog.Logger) *propertyUC {
	return &propertyUC{props: props, users: users, tx: tx, log: logger}
}

func (u *propertyUC) Create(ctx context.Context, ownerID string, in PropertyInput) (*model.Property, error) {
	owner, err := u.users.FindByID(ctx, repository.NoTX, ownerID)
	if err != nil {
		return nil, err
	}

	prop, err := model.NewProperty(uuid.NewString(), ownerID, in.Title, in.Price)
	if err != nil {
		return nil, err
	}
	prop.Description = in.Description
	prop.City = in.City
	prop.IsPromoted = in.IsPromoted
	prop.PromotionTier = in.PromotionTier

	err = u.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		approver := ""
		if owner.Privileged() {
			approver = owner.ID
		}
		prop.ApplyCreateDefaults(owner.Privileged(), approver, time.Now())
		return u.props.Save(ctx, tx, prop)
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("property_id", prop.ID).Str("approval", string(prop.ApprovalStatus)).Msg("property created")
	return prop, nil
}

func (u *propertyUC) Update(ctx context.Context, callerID, propertyID string, in PropertyInput) (*model.Property, error) {
	var updated *model.Property
	err := u.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		prop, err := u.props.FindByID(ctx, tx, propertyID)
		if err != nil {
			return err
		}
		if prop.OwnerID != callerID {
			return domain.ErrNotOwner
		}
		prev := *prop
		prop.Title = in.Title
		prop.Description = in.Description
		prop.Price = in.Price
		prop.City = in.City
		prop.IsPromoted = in.IsPromoted
		if in.PromotionTier != "" {
			prop.PromotionTier = in.PromotionTier
		}
		prop.ApplyUpdate(&prev, "", time.Now())
		updated = prop
		return u.props.Save(ctx, tx, prop)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (u *propertyUC) Get(ctx context.Context, propertyID string) (*model.Property, error) {
	return u.props.FindByID(ctx, repository.NoTX, propertyID)
}

func (u *propertyUC) ListByOwner(ctx context.Context, ownerID string) ([]*model.Property, error) {
	return u.props.ListByOwner(ctx, repository.NoTX, ownerID)
}

func (u *propertyUC) Approve(ctx context.Context, propertyID, adminID string) (*model.Property, error) {
	return u.moderate(ctx, propertyID, adminID, model.ApprovalStatusApproved)
}

func (u *propertyUC) Reject(ctx context.Context, propertyID, adminID string) (*model.Property, error) {
	return u.moderate(ctx, propertyID, adminID, model.ApprovalStatusRejected)
}

func (u *propertyUC) RequestChanges(ctx context.Context, propertyID, adminID string) (*model.Property, error) {
	return u.moderate(ctx, propertyID, adminID, model.ApprovalStatusChangesRequested)
}

func (u *propertyUC) moderate(ctx context.Context, propertyID, adminID string, status model.ApprovalStatus) (*model.Property, error) {
	var moderated *model.Property
	err := u.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		prop, err := u.props.FindByID(ctx, tx, propertyID)
		if err != nil {
			return err
		}
		prev := *prop
		prop.ApprovalStatus = status
		if status != model.ApprovalStatusApproved && prop.IsPromoted {
			// Moderation outranks a paid promotion: a rejected listing cannot
			// keep promoted visibility flags.
			prop.ClearPromotion(time.Now())
		}
		prop.ApplyUpdate(&prev, adminID, time.Now())
		moderated = prop
		return u.props.Save(ctx, tx, prop)
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("property_id", propertyID).Str("approval", string(status)).Str("admin_id", adminID).Msg("property moderated")
	return moderated, nil
}
