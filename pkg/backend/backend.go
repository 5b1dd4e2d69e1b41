package backend

import (
	"context"

	"github.com/tectrixdev/unplayit/pkg/model"
)

type Backend interface {
	Register(ctx context.Context, userID uint, req model.RegisterRequest) (Result, error)
	Status(ctx context.Context, req model.RegisterRequest) StatusView
	GetRootDomain() string
	StartReconcilerDaemon(ctx context.Context)
}
