package services

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"file-storage-api/internal/application/ports"
	"file-storage-api/internal/domain/apperr"
	domain "file-storage-api/internal/domain/user"
	"file-storage-api/internal/infrastructure/mq"
)

type UserService struct {
	tx        ports.TxManager
	engine    ports.StorageEngine
	publisher ports.EventPublisher
	logger    *zap.Logger
	mCounter  *prometheus.CounterVec
}

func NewUserService(
	tx ports.TxManager,
	engine ports.StorageEngine,
	publisher ports.EventPublisher,
	logger *zap.Logger,
	mCounter *prometheus.CounterVec,
) ports.UserService {
	return &UserService{
		tx:        tx,
		engine:    engine,
		publisher: publisher,
		logger:    logger,
		mCounter:  mCounter,
	}
}

func (us *UserService) FindUserByID(ctx context.Context, id domain.ID) (*domain.User, error) {
	u, err := us.tx.Users().FetchUserByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return u, nil
}

func (us *UserService) FindUsers(ctx context.Context) (domain.Users, error) {
	users, err := us.tx.Users().FetchUsers(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if users == nil {
		users = domain.Users{}
	}

	return users, nil
}

func (us *UserService) UpdateRole(ctx context.Context, actor ports.Identity, id domain.ID, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, apperr.NewValidation("role", "must be user or admin")
	}
	if actor.UserID == id {
		return nil, apperr.NewValidation("id", "cannot change your own role")
	}

	u, err := us.tx.Users().UpdateRole(ctx, id, role)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	us.inc("user_role_changed_total")
	us.publish(mq.NewEvent(mq.ActionUserRoleChanged, int64(u.ID), 0, eventUser(u)))

	return u, nil
}

// DeleteUser removes the account together with every file it owns, blobs
// included, in one transaction.
func (us *UserService) DeleteUser(ctx context.Context, actor ports.Identity, id domain.ID) error {
	if actor.UserID == id {
		return apperr.NewValidation("id", "cannot delete your own account")
	}

	var (
		u      *domain.User
		purged int
	)
	err := us.tx.InTx(ctx, func(ctx context.Context, s ports.Session) (err error) {
		if err = s.Users().LockUser(ctx, id); err != nil {
			return err
		}
		if u, err = s.Users().FetchUserByID(ctx, id); err != nil {
			return err
		}
		if purged, err = us.engine.PurgeOwner(ctx, s, id); err != nil {
			return fmt.Errorf("purge files: %w", err)
		}
		return s.Users().DeleteUser(ctx, id)
	})
	if err != nil {
		return apperr.Internal(err)
	}

	us.logger.Info("user deleted",
		zap.Int64("user_id", int64(id)),
		zap.Int("files_removed", purged),
		zap.Int64("actor_id", int64(actor.UserID)),
	)
	us.inc("user_deleted_total")
	us.publish(mq.NewEvent(mq.ActionUserDeleted, int64(u.ID), 0, eventUser(u)))

	return nil
}

func (us *UserService) inc(label string) {
	if us.mCounter != nil {
		us.mCounter.WithLabelValues(label).Inc()
	}
}

func (us *UserService) publish(ev mq.Event) {
	if us.publisher != nil {
		us.publisher.Publish(ev)
	}
}
