package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/autoimport-backend/internal/models"
	"github.com/javajoker/autoimport-backend/internal/testutil"
	"github.com/javajoker/autoimport-backend/internal/utils"
)

func TestUpdateProfileMergesProfileData(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.CreateAdmin(t, db, "admin@autoimport.ro", "s3cret!")
	require.NoError(t, db.Model(admin).Update("profile_data", models.JSONB{"theme": "dark"}).Error)
	s := NewUserService(db)

	name := "Maria Ionescu"
	phone := " 0722 000 000 "
	user, err := s.UpdateProfile(context.Background(), admin.ID, &UpdateUserProfileRequest{
		FullName:    &name,
		Phone:       &phone,
		ProfileData: map[string]interface{}{"signature_city": "Cluj"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Maria Ionescu", user.FullName)
	assert.Equal(t, "0722 000 000", models.StringValue(user.Phone))
	assert.Equal(t, "dark", user.ProfileData["theme"])
	assert.Equal(t, "Cluj", user.ProfileData["signature_city"])
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	s := NewUserService(testutil.NewDB(t))
	_, err := s.UpdateProfile(context.Background(), uuid.New(), &UpdateUserProfileRequest{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.CreateAdmin(t, db, "admin@autoimport.ro", "s3cret!")
	s := NewUserService(db)
	ctx := context.Background()

	err := s.ChangePassword(ctx, admin.ID, &ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "long-enough-1"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = s.ChangePassword(ctx, admin.ID, &ChangePasswordRequest{CurrentPassword: "s3cret!", NewPassword: "short"})
	assert.NotEmpty(t, utils.GetValidationErrors(err))

	require.NoError(t, s.ChangePassword(ctx, admin.ID, &ChangePasswordRequest{CurrentPassword: "s3cret!", NewPassword: "long-enough-1"}))

	stored, err := s.GetUserByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.NoError(t, stored.CheckPassword("long-enough-1"))
}
