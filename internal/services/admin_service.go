// internal/services/admin_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/autoimport-backend/internal/metrics"
	"github.com/javajoker/autoimport-backend/internal/models"
	"github.com/javajoker/autoimport-backend/internal/utils"
)

var ErrCannotModifyAdmin = errors.New("admin accounts cannot be changed here")

type AdminService struct {
	db  *gorm.DB
	now func() time.Time
}

type AdminDashboardStats struct {
	TotalContracts      int64            `json:"total_contracts"`
	ContractsByStatus   map[string]int64 `json:"contracts_by_status"`
	ContractsThisMonth  int64            `json:"contracts_this_month"`
	ContractGrowth      float64          `json:"contract_growth"`
	SignedVolume        float64          `json:"signed_volume"`
	TotalClients        int64            `json:"total_clients"`
	NewClientsThisMonth int64            `json:"new_clients_this_month"`
	OpenCarRequests     int64            `json:"open_car_requests"`
	OffersThisMonth     int64            `json:"offers_this_month"`
}

type AdminClientFilter struct {
	utils.PaginationParams
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}

type UpdateClientStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended"`
	Reason string `json:"reason"`
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{
		db:  db,
		now: time.Now,
	}
}

// Dashboard Statistics
func (s *AdminService) GetDashboardStats(ctx context.Context) (*AdminDashboardStats, error) {
	defer metrics.TrackDBOperation("admin.dashboard")(time.Now())

	db := s.db.WithContext(ctx)
	stats := &AdminDashboardStats{ContractsByStatus: make(map[string]int64)}
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	// Contract statistics
	var rows []struct {
		Status string
		Total  int64
	}
	if err := db.Model(&models.Contract{}).Select("status, COUNT(*) AS total").Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count contracts: %w", err)
	}
	for _, row := range rows {
		stats.ContractsByStatus[row.Status] = row.Total
		stats.TotalContracts += row.Total
	}

	var lastMonthContracts int64
	counts := []struct {
		query *gorm.DB
		dst   *int64
	}{
		{db.Model(&models.Contract{}).Where("created_at >= ?", monthStart), &stats.ContractsThisMonth},
		{db.Model(&models.Contract{}).Where("created_at >= ? AND created_at < ?", lastMonthStart, monthStart), &lastMonthContracts},
		{db.Model(&models.User{}).Where("user_type = ?", models.UserTypeClient), &stats.TotalClients},
		{db.Model(&models.User{}).Where("user_type = ? AND created_at >= ?", models.UserTypeClient, monthStart), &stats.NewClientsThisMonth},
		{db.Model(&models.CarRequest{}).Where("status IN ?", []models.CarRequestStatus{models.CarRequestStatusNew, models.CarRequestStatusInProgress}), &stats.OpenCarRequests},
		{db.Model(&models.CarRequest{}).Where("offer_sent_at >= ?", monthStart), &stats.OffersThisMonth},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
		}
	}

	if err := db.Model(&models.Contract{}).
		Where("status = ?", models.ContractStatusSignedByClient).
		Select("COALESCE(SUM(suma_licitatie), 0)").Scan(&stats.SignedVolume).Error; err != nil {
		return nil, fmt.Errorf("failed to sum signed contracts: %w", err)
	}

	// Growth calculations
	if lastMonthContracts > 0 {
		stats.ContractGrowth = float64(stats.ContractsThisMonth-lastMonthContracts) / float64(lastMonthContracts) * 100
	}

	return stats, nil
}

// Client Management
func (s *AdminService) GetClients(ctx context.Context, filter AdminClientFilter) (*utils.PaginationResult, error) {
	query := s.db.WithContext(ctx).Model(&models.User{}).Where("user_type = ?", models.UserTypeClient)

	// Apply filters
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}

	query = utils.ApplySort(query, filter.PaginationParams, []string{"created_at", "full_name", "email", "status"})
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var clients []models.User
	if err := query.Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch clients: %w", err)
	}

	result := utils.CreatePaginationResult(clients, total, filter.PaginationParams)
	return &result, nil
}

// UpdateClientStatus suspends or reactivates a client account.
func (s *AdminService) UpdateClientStatus(ctx context.Context, userID uuid.UUID, req UpdateClientStatusRequest, adminID uuid.UUID) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if user.IsAdmin() {
		return nil, ErrCannotModifyAdmin
	}

	oldStatus := user.Status
	if err := db.Model(&user).Update("status", models.UserStatus(req.Status)).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	user.Status = models.UserStatus(req.Status)

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"admin_id":   adminID,
		"old_status": oldStatus,
		"new_status": user.Status,
		"reason":     req.Reason,
	}).Info("Client status updated")

	return &user, nil
}
