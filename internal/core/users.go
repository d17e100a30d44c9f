package core

import (
	"context"
	"fmt"

	"annexcore/pkg/domain"
)

// AddUser creates an account. Status defaults to Active.
func (s *Service) AddUser(ctx context.Context, user User) (User, Result, error) {
	var created User
	res, err := s.run(ctx, "create_user", func(tx Transaction) (string, error) {
		var err error
		created, err = tx.CreateUser(user)
		return created.ID, err
	})
	if err != nil {
		return User{}, res, err
	}
	return created, res, nil
}

// UpdateUser applies mutator to an existing account.
func (s *Service) UpdateUser(ctx context.Context, id string, mutator func(*User) error) (User, Result, error) {
	var updated User
	res, err := s.run(ctx, "update_user", func(tx Transaction) (string, error) {
		var err error
		updated, err = tx.UpdateUser(id, mutator)
		return id, err
	})
	if err != nil {
		return User{}, res, err
	}
	return updated, res, nil
}

// SetUserStatus suspends or reactivates an account.
func (s *Service) SetUserStatus(ctx context.Context, id string, status domain.UserStatus) (User, Result, error) {
	switch status {
	case domain.UserStatusActive, domain.UserStatusSuspended:
	default:
		return User{}, Result{}, domain.NewValidationError(EntityUser, "status", fmt.Sprintf("unsupported value %q", status))
	}
	var updated User
	res, err := s.run(ctx, "set_user_status", func(tx Transaction) (string, error) {
		var err error
		updated, err = tx.UpdateUser(id, func(u *User) error {
			u.Status = status
			return nil
		})
		return id, err
	})
	if err != nil {
		return User{}, res, err
	}
	return updated, res, nil
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_user", func(tx Transaction) (string, error) {
		return id, tx.DeleteUser(id)
	})
}

// GetUser returns the account with the given id.
func (s *Service) GetUser(id string) (User, error) {
	u, ok := s.store.GetUser(id)
	if !ok {
		return User{}, notFound(EntityUser, id)
	}
	return u, nil
}

// ListUsers returns every account in insertion order.
func (s *Service) ListUsers() []User { return s.store.ListUsers() }
