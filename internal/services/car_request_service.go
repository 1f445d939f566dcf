// internal/services/car_request_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/autoimport-backend/internal/metrics"
	"github.com/javajoker/autoimport-backend/internal/models"
	"github.com/javajoker/autoimport-backend/internal/utils"
)

var (
	ErrCarRequestNotFound = errors.New("car request not found")
	ErrClientEmailMissing = errors.New("client has no email address")
)

type UpdateCarRequestRequest struct {
	Status *string  `json:"status" validate:"omitempty,oneof=new in_progress offer_sent closed"`
	Notes  *string  `json:"notes"`
	Budget *float64 `json:"budget" validate:"omitempty,gt=0"`
}

type SendOfferRequest struct {
	OfferLink string `json:"offer_link" validate:"required,url"`
}

type CarRequestService struct {
	db            *gorm.DB
	notifications *NotificationService
	now           func() time.Time
}

func NewCarRequestService(db *gorm.DB, notifications *NotificationService) *CarRequestService {
	return &CarRequestService{
		db:            db,
		notifications: notifications,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *CarRequestService) Get(ctx context.Context, id uuid.UUID) (*models.CarRequest, error) {
	var request models.CarRequest
	if err := s.db.WithContext(ctx).Preload("Client").First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCarRequestNotFound
		}
		return nil, fmt.Errorf("failed to load car request: %w", err)
	}
	return &request, nil
}

func (s *CarRequestService) List(ctx context.Context, params utils.PaginationParams) (*utils.PaginationResult, error) {
	defer metrics.TrackDBOperation("car_requests.list")(time.Now())

	query := s.db.WithContext(ctx).Model(&models.CarRequest{})

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Search != "" {
		term := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(brand) LIKE ? OR LOWER(model) LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count car requests: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "budget", "brand", "status"})
	query = utils.ApplyPagination(query, params)

	var requests []models.CarRequest
	if err := query.Preload("Client").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list car requests: %w", err)
	}

	result := utils.CreatePaginationResult(requests, total, params)
	return &result, nil
}

func (s *CarRequestService) Update(ctx context.Context, id uuid.UUID, req UpdateCarRequestRequest) (*models.CarRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Status != nil {
		updates["status"] = models.CarRequestStatus(*req.Status)
	}
	if req.Notes != nil {
		updates["notes"] = models.OptionalString(*req.Notes)
	}
	if req.Budget != nil {
		updates["budget"] = *req.Budget
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	if err := s.write(ctx, id, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// SendOffer emails the offer link to the client and marks the request as
// offer_sent. The request is only updated after the email went out.
func (s *CarRequestService) SendOffer(ctx context.Context, id uuid.UUID, req SendOfferRequest) (sent bool, err error) {
	defer func() { metrics.RecordOffer(err) }()

	req.OfferLink = strings.TrimSpace(req.OfferLink)
	if err := utils.ValidateStruct(req); err != nil {
		return false, err
	}

	request, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(request.Client.Email) == "" {
		return false, ErrClientEmailMissing
	}

	email := OfferEmail{
		ClientName: request.Client.FullName,
		Brand:      request.Brand,
		Model:      request.Model,
		OfferLink:  req.OfferLink,
	}
	if request.Year != nil {
		email.Year = strconv.Itoa(*request.Year)
	}

	if err := s.notifications.SendOfferEmail(ctx, request.Client.Email, email); err != nil {
		return false, err
	}

	sentAt := s.now()
	if err := s.write(ctx, id, map[string]interface{}{
		"status":        models.CarRequestStatusOfferSent,
		"offer_link":    req.OfferLink,
		"offer_sent_at": &sentAt,
	}); err != nil {
		return false, err
	}

	logrus.WithFields(logrus.Fields{
		"car_request_id": id,
		"client_id":      request.ClientID,
	}).Info("Offer sent")
	return true, nil
}

func (s *CarRequestService) write(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&models.CarRequest{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update car request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCarRequestNotFound
	}
	return nil
}
