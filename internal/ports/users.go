package ports

import (
	"context"

	"github.com/freelancehub/web/internal/domain/model"
)

// UserAPI is the external user REST API. Every failure is an *errors.AppError
// with code request_failed and a user-displayable message.
type UserAPI interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.MessageResponse, error)
	// Login authenticates and, when the response carries a user, records it into slot.
	Login(ctx context.Context, slot string, req model.LoginRequest) (model.LoginResult, error)
	ListUsers(ctx context.Context) ([]model.UserProfile, error)
	FetchUser(ctx context.Context, id model.UserID) (model.UserProfile, error)
	UpdateUser(ctx context.Context, id model.UserID, patch model.UserPatch) (model.UserProfile, error)
	UpdateProfilePicture(ctx context.Context, id model.UserID, upload model.PictureUpload) (model.UserProfile, error)
	DeleteUser(ctx context.Context, id model.UserID) (model.MessageResponse, error)
}
