package remote

import (
	"context"

	"quranstudy/internal/common"
	"quranstudy/internal/models"
)

// DisabledStore is the implementation selected when no remote project
// is configured. Every operation reports the remote store as
// unavailable; the session then behaves exactly like an anonymous one.
type DisabledStore struct{}

func NewDisabledStore() *DisabledStore {
	return &DisabledStore{}
}

func (*DisabledStore) Get(context.Context, string) (*models.UserProfile, error) {
	return nil, common.ErrRemoteUnavailable
}

func (*DisabledStore) Create(context.Context, string, string, string) error {
	return common.ErrRemoteUnavailable
}

func (*DisabledStore) UpdateField(context.Context, string, models.Kind, any) error {
	return common.ErrRemoteUnavailable
}

func (*DisabledStore) Merge(context.Context, string, models.Collections) error {
	return common.ErrRemoteUnavailable
}

func (*DisabledStore) Subscribe(context.Context, string, func(*models.UserProfile, error)) (func(), error) {
	return nil, common.ErrRemoteUnavailable
}

func (*DisabledStore) Close() error { return nil }
