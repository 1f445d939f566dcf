package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/autoimport-backend/internal/models"
	"github.com/javajoker/autoimport-backend/internal/testutil"
	"github.com/javajoker/autoimport-backend/internal/utils"
)

func TestDashboardStats(t *testing.T) {
	s, db := newContractService(t)
	testutil.MigrateCarRequests(t, db)
	ctx := context.Background()

	client := testutil.CreateClient(t, db, "client@example.ro", "Ion Popescu")
	createContract(t, s)
	signed := createContract(t, s)
	_, err := s.SignAsProvider(ctx, signed.ID, SignRequest{Signature: pngSignature})
	require.NoError(t, err)
	_, err = s.SendToClient(ctx, signed.ID, Confirmed(true))
	require.NoError(t, err)
	_, err = s.SignAsClient(ctx, signed.ID, SignRequest{Signature: pngSignature})
	require.NoError(t, err)

	createCarRequest(t, db, client, "BMW", "X5")
	closed := createCarRequest(t, db, client, "Audi", "A4")
	require.NoError(t, db.Model(closed).Update("status", models.CarRequestStatusClosed).Error)

	stats, err := NewAdminService(db).GetDashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalContracts)
	assert.Equal(t, int64(1), stats.ContractsByStatus["draft"])
	assert.Equal(t, int64(1), stats.ContractsByStatus["semnat_de_client"])
	assert.Equal(t, int64(2), stats.ContractsThisMonth)
	assert.InDelta(t, 8500, stats.SignedVolume, 0.001)
	assert.Equal(t, int64(1), stats.TotalClients)
	assert.Equal(t, int64(1), stats.OpenCarRequests)
}

func TestGetClients(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateAdmin(t, db, "admin@autoimport.ro", "s3cret!")
	testutil.CreateClient(t, db, "ion@example.ro", "Ion Popescu")
	testutil.CreateClient(t, db, "maria@example.ro", "Maria Ionescu")

	s := NewAdminService(db)
	params := utils.PaginationParams{Page: 1, Limit: 20, Sort: "full_name", Order: "asc"}

	result, err := s.GetClients(context.Background(), AdminClientFilter{PaginationParams: params})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	clients := result.Data.([]models.User)
	assert.Equal(t, "Ion Popescu", clients[0].FullName)

	params.Search = "IONESCU"
	result, err = s.GetClients(context.Background(), AdminClientFilter{PaginationParams: params})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
}

func TestUpdateClientStatus(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.CreateAdmin(t, db, "admin@autoimport.ro", "s3cret!")
	client := testutil.CreateClient(t, db, "ion@example.ro", "Ion Popescu")
	s := NewAdminService(db)
	ctx := context.Background()

	user, err := s.UpdateClientStatus(ctx, client.ID, UpdateClientStatusRequest{Status: "suspended"}, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusSuspended, user.Status)

	_, err = s.UpdateClientStatus(ctx, admin.ID, UpdateClientStatusRequest{Status: "suspended"}, admin.ID)
	assert.ErrorIs(t, err, ErrCannotModifyAdmin)

	_, err = s.UpdateClientStatus(ctx, client.ID, UpdateClientStatusRequest{Status: "banned"}, admin.ID)
	assert.NotEmpty(t, utils.GetValidationErrors(err))
}
