package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/autoimport-backend/internal/config"
	"github.com/javajoker/autoimport-backend/internal/i18n"
	"github.com/javajoker/autoimport-backend/internal/middleware"
	"github.com/javajoker/autoimport-backend/internal/models"
	"github.com/javajoker/autoimport-backend/internal/pdf"
	"github.com/javajoker/autoimport-backend/internal/render"
	"github.com/javajoker/autoimport-backend/internal/services"
	"github.com/javajoker/autoimport-backend/internal/testutil"
	"github.com/javajoker/autoimport-backend/internal/utils"
)

const (
	testPassword = "Parola-Sigura-1"
	pngSignature = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type contractBody struct {
	Message  string          `json:"message"`
	Contract models.Contract `json:"contract"`
}

type HandlersTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	admin  *models.User
	token  string
}

func (suite *HandlersTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(i18n.Initialize("ro"))
	utils.SetJWTSecret("handlers-test-secret")
}

func (suite *HandlersTestSuite) SetupTest() {
	t := suite.T()
	suite.db = testutil.NewDB(t)
	testutil.MigrateCarRequests(t, suite.db)
	suite.admin = testutil.CreateAdmin(t, suite.db, "admin@autoimport.ro", testPassword)

	token, err := utils.GenerateJWT(suite.admin.ID, suite.admin.Email, string(models.UserTypeAdmin), 1)
	suite.Require().NoError(err)
	suite.token = token

	storage, err := services.NewStorageService(context.Background(), config.StorageConfig{
		Driver:    "local",
		LocalPath: t.TempDir(),
	})
	suite.Require().NoError(err)

	identity := services.NewIdentityService(suite.db)
	contracts := services.NewContractService(suite.db, identity)
	exporter := services.NewContractExporter(contracts, pdf.New(config.PDFConfig{}), storage, render.DefaultProvider(), time.Hour)
	boards := services.NewBoardRegistry(contracts, exporter)
	notifications := services.NewNotificationService(config.EmailConfig{}, config.FrontendConfig{})

	authHandler := NewAuthHandler(services.NewAuthService(suite.db, config.JWTConfig{AccessTokenTTL: 1}), services.NewUserService(suite.db), boards)
	contractHandler := NewContractHandler(boards, exporter)
	identityHandler := NewIdentityHandler(identity)
	carRequestHandler := NewCarRequestHandler(services.NewCarRequestService(suite.db, notifications))
	adminHandler := NewAdminHandler(services.NewAdminService(suite.db))

	r := gin.New()
	r.Use(middleware.I18nMiddleware())

	auth := r.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		auth.PUT("/me", middleware.AuthRequired(), authHandler.UpdateProfile)
		auth.PUT("/password", middleware.AuthRequired(), authHandler.ChangePassword)
	}

	admin := r.Group("/admin", middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.GET("/dashboard", adminHandler.GetDashboard)
		admin.GET("/clients", adminHandler.GetClients)
		admin.PUT("/clients/:id/status", adminHandler.UpdateClientStatus)

		admin.GET("/contracts", contractHandler.List)
		admin.POST("/contracts", contractHandler.Create)
		admin.GET("/contracts/form/defaults", contractHandler.FormDefaults)
		admin.DELETE("/contracts/selection", contractHandler.CloseDetail)
		admin.DELETE("/contracts/selection/signature", contractHandler.CancelSignature)
		admin.GET("/contracts/:id", contractHandler.Get)
		admin.PUT("/contracts/:id", contractHandler.Update)
		admin.DELETE("/contracts/:id", contractHandler.Delete)
		admin.POST("/contracts/:id/sign", contractHandler.Sign)
		admin.POST("/contracts/:id/send", contractHandler.Send)
		admin.POST("/contracts/:id/client-sign", contractHandler.ClientSign)
		admin.GET("/contracts/:id/preview", contractHandler.Preview)
		admin.POST("/contracts/:id/export", contractHandler.Export)

		admin.GET("/identity/:userId", identityHandler.Lookup)
		admin.PUT("/identity/:userId", identityHandler.Upsert)

		admin.GET("/car-requests", carRequestHandler.List)
		admin.GET("/car-requests/:id", carRequestHandler.Get)
		admin.PUT("/car-requests/:id", carRequestHandler.Update)
		admin.POST("/car-requests/:id/send-offer", carRequestHandler.SendOffer)
	}
	suite.router = r
}

func (suite *HandlersTestSuite) request(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en")
	if suite.token != "" {
		req.Header.Set("Authorization", "Bearer "+suite.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) decode(w *httptest.ResponseRecorder) apiResponse {
	var resp apiResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func contractPayload() map[string]interface{} {
	return map[string]interface{}{
		"contract_type":  "servicii",
		"status":         "draft",
		"data":           "2024-03-15",
		"nume_prenume":   "Ion Popescu",
		"localitatea":    "Cluj-Napoca",
		"strada":         "Str. Memorandumului",
		"nr_strada":      "12",
		"judet":          "Cluj",
		"email":          "ion.popescu@example.ro",
		"ci_seria":       "CJ",
		"ci_nr":          "123456",
		"cnp":            "1850101123456",
		"spclep":         "SPCLEP Cluj-Napoca",
		"ci_data":        "2020-06-01",
		"suma_licitatie": 8500,
	}
}

func (suite *HandlersTestSuite) createContract() models.Contract {
	w := suite.request(http.MethodPost, "/admin/contracts", contractPayload())
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var body contractBody
	suite.Require().NoError(json.Unmarshal(suite.decode(w).Data, &body))
	return body.Contract
}

func (suite *HandlersTestSuite) storedStatus(id uuid.UUID) models.ContractStatus {
	var c models.Contract
	suite.Require().NoError(suite.db.First(&c, "id = ?", id).Error)
	return c.Status
}

func (suite *HandlersTestSuite) TestLogin() {
	suite.token = ""
	w := suite.request(http.MethodPost, "/auth/login", map[string]string{
		"email":    "Admin@AutoImport.ro",
		"password": testPassword,
	})
	suite.Equal(http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
	}
	suite.Require().NoError(json.Unmarshal(suite.decode(w).Data, &data))
	suite.NotEmpty(data.Token)
	suite.Equal("Bearer", data.TokenType)

	w = suite.request(http.MethodPost, "/auth/login", map[string]string{
		"email":    "admin@autoimport.ro",
		"password": "wrong",
	})
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("UNAUTHORIZED", suite.decode(w).Error.Code)
}

func (suite *HandlersTestSuite) TestMeAndProfile() {
	w := suite.request(http.MethodGet, "/auth/me", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var user models.User
	suite.Require().NoError(json.Unmarshal(suite.decode(w).Data, &user))
	suite.Equal(suite.admin.ID, user.ID)

	w = suite.request(http.MethodPut, "/auth/me", map[string]string{"full_name": "Maria Ionescu"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var stored models.User
	suite.Require().NoError(suite.db.First(&stored, "id = ?", suite.admin.ID).Error)
	suite.Equal("Maria Ionescu", stored.FullName)
}

func (suite *HandlersTestSuite) TestChangePassword() {
	w := suite.request(http.MethodPut, "/auth/password", map[string]string{
		"current_password": "not-it",
		"new_password":     "Alta-Parola-2",
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPut, "/auth/password", map[string]string{
		"current_password": testPassword,
		"new_password":     "Alta-Parola-2",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var stored models.User
	suite.Require().NoError(suite.db.First(&stored, "id = ?", suite.admin.ID).Error)
	suite.NoError(stored.CheckPassword("Alta-Parola-2"))
}

func (suite *HandlersTestSuite) TestAdminRoutesRequireAdmin() {
	suite.token = ""
	w := suite.request(http.MethodGet, "/admin/contracts", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	client := testutil.CreateClient(suite.T(), suite.db, "client@example.ro", "Ion Popescu")
	token, err := utils.GenerateJWT(client.ID, client.Email, string(models.UserTypeClient), 1)
	suite.Require().NoError(err)
	suite.token = token

	w = suite.request(http.MethodGet, "/admin/contracts", nil)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlersTestSuite) TestCreateContract() {
	c := suite.createContract()
	suite.Equal(int64(1), c.ContractNumber)
	suite.Equal(models.ContractStatusDraft, c.Status)

	w := suite.request(http.MethodGet, "/admin/contracts", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var state services.BoardState
	suite.Require().NoError(json.Unmarshal(suite.decode(w).Data, &state))
	suite.Len(state.Contracts, 1)
	suite.Require().NotNil(state.Selected)
	suite.Equal(c.ID, state.Selected.ID)
}

func (suite *HandlersTestSuite) TestCreateContractWithoutStatus() {
	payload := contractPayload()
	delete(payload, "status")
	delete(payload, "contract_type")

	w := suite.request(http.MethodPost, "/admin/contracts", payload)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var body contractBody
	suite.Require().NoError(json.Unmarshal(suite.decode(w).Data, &body))
	suite.Equal(models.ContractStatusDraft, body.Contract.Status)
	suite.Equal(models.ContractTypeServices, body.Contract.ContractType)
}

func (suite *HandlersTestSuite) TestCreateContractValidation() {
	payload := contractPayload()
	payload["cnp"] = "185010112345"
	payload["suma_licitatie"] = 0

	w := suite.request(http.MethodPost, "/admin/contracts", payload)
	suite.Require().Equal(http.StatusBadRequest, w.Code)

	resp := suite.decode(w)
	suite.Equal("VALIDATION_ERROR", resp.Error.Code)

	var fields []utils.ValidationError
	suite.Require().NoError(json.Unmarshal(resp.Error.Details, &fields))
	var names []string
	for _, f := range fields {
		names = append(names, f.Field)
	}
	suite.ElementsMatch([]string{"cnp", "suma_licitatie"}, names)

	var count int64
	suite.db.Model(&models.Contract{}).Count(&count)
	suite.Zero(count)
}

func (suite *HandlersTestSuite) TestFormDefaults() {
	w := suite.request(http.MethodGet, "/admin/contracts/form/defaults", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var form services.ContractForm
	suite.Require().NoError(json.Unmarshal(suite.decode(w).Data, &form))
	suite.Equal("servicii", form.ContractType)
	suite.Equal("draft", form.Status)
}

func (suite *HandlersTestSuite) TestGetContract() {
	c := suite.createContract()

	w := suite.request(http.MethodGet, "/admin/contracts/"+c.ID.String(), nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/admin/contracts/"+uuid.NewString(), nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("NOT_FOUND", suite.decode(w).Error.Code)

	w = suite.request(http.MethodGet, "/admin/contracts/not-a-uuid", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestCloseDetail() {
	c := suite.createContract()
	suite.request(http.MethodGet, "/admin/contracts/"+c.ID.String(), nil)

	w := suite.request(http.MethodDelete, "/admin/contracts/selection", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var state services.BoardState
	suite.Require().NoError(json.Unmarshal(suite.decode(w).Data, &state))
	suite.Nil(state.Selected)
}

func (suite *HandlersTestSuite) TestCancelSignature() {
	c := suite.createContract()
	path := "/admin/contracts/" + c.ID.String()
	suite.request(http.MethodGet, path, nil)

	w := suite.request(http.MethodPost, path+"/sign", map[string]string{"signature": pngSignature})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request(http.MethodDelete, "/admin/contracts/selection/signature", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var state services.BoardState
	suite.Require().NoError(json.Unmarshal(suite.decode(w).Data, &state))
	suite.False(state.Signing)
	suite.Require().NotNil(state.Selected)
	suite.Equal(c.ID, state.Selected.ID)
	suite.Equal(models.ContractStatusSigned, state.Selected.Status)
}

func (suite *HandlersTestSuite) TestUpdateContract() {
	c := suite.createContract()
	payload := contractPayload()
	payload["localitatea"] = "Turda"

	w := suite.request(http.MethodPut, "/admin/contracts/"+c.ID.String(), payload)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var body contractBody
	suite.Require().NoError(json.Unmarshal(suite.decode(w).Data, &body))
	suite.Equal("Turda", body.Contract.Locality)
}

func (suite *HandlersTestSuite) TestSignSendAndClientSign() {
	c := suite.createContract()
	path := "/admin/contracts/" + c.ID.String()

	w := suite.request(http.MethodPost, path+"/sign", map[string]string{"signature": pngSignature})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var body contractBody
	suite.Require().NoError(json.Unmarshal(suite.decode(w).Data, &body))
	suite.Equal(models.ContractStatusSigned, body.Contract.Status)
	suite.Require().NotNil(body.Contract.ProviderSignature)
	suite.Equal(pngSignature, *body.Contract.ProviderSignature)
	suite.Require().NotNil(body.Contract.ProviderSignedBy)
	suite.Equal(suite.admin.ID, *body.Contract.ProviderSignedBy)

	w = suite.request(http.MethodPost, path+"/send?confirm=true", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal(models.ContractStatusSentToClient, suite.storedStatus(c.ID))

	w = suite.request(http.MethodPost, path+"/client-sign", map[string]string{"signature": pngSignature})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal(models.ContractStatusSignedByClient, suite.storedStatus(c.ID))
}

func (suite *HandlersTestSuite) TestSignRejectsInvalidPayload() {
	c := suite.createContract()

	w := suite.request(http.MethodPost, "/admin/contracts/"+c.ID.String()+"/sign", map[string]string{"signature": "not-an-image"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(models.ContractStatusDraft, suite.storedStatus(c.ID))
}

func (suite *HandlersTestSuite) TestSendRequiresConfirmation() {
	c := suite.createContract()
	path := "/admin/contracts/" + c.ID.String()
	suite.request(http.MethodPost, path+"/sign", map[string]string{"signature": pngSignature})

	w := suite.request(http.MethodPost, path+"/send", nil)
	suite.Require().Equal(http.StatusBadRequest, w.Code)

	resp := suite.decode(w)
	suite.Equal("CONFIRMATION_REQUIRED", resp.Error.Code)
	var details struct {
		Prompt string `json:"prompt"`
	}
	suite.Require().NoError(json.Unmarshal(resp.Error.Details, &details))
	suite.Equal("Send this contract to the client?", details.Prompt)
	suite.Equal(models.ContractStatusSigned, suite.storedStatus(c.ID))

	w = suite.request(http.MethodPost, path+"/send", map[string]bool{"confirm": true})
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (suite *HandlersTestSuite) TestSendWithoutSignature() {
	c := suite.createContract()

	w := suite.request(http.MethodPost, "/admin/contracts/"+c.ID.String()+"/send?confirm=true", nil)
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.Equal("INVALID_TRANSITION", suite.decode(w).Error.Code)
}

func (suite *HandlersTestSuite) TestClientSignBeforeSend() {
	c := suite.createContract()

	w := suite.request(http.MethodPost, "/admin/contracts/"+c.ID.String()+"/client-sign", map[string]string{"signature": pngSignature})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *HandlersTestSuite) TestDeleteContract() {
	c := suite.createContract()
	path := "/admin/contracts/" + c.ID.String()

	w := suite.request(http.MethodDelete, path, nil)
	suite.Require().Equal(http.StatusBadRequest, w.Code)
	suite.Equal("CONFIRMATION_REQUIRED", suite.decode(w).Error.Code)

	w = suite.request(http.MethodDelete, path+"?confirm=true", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request(http.MethodGet, path, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestPreviewETag() {
	c := suite.createContract()
	path := "/admin/contracts/" + c.ID.String() + "/preview"

	w := suite.request(http.MethodGet, path, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Contains(w.Header().Get("Content-Type"), "text/html")
	suite.Contains(w.Body.String(), "Ion Popescu")

	etag := w.Header().Get("ETag")
	suite.Require().NotEmpty(etag)

	w = suite.request(http.MethodGet, path, nil, "If-None-Match", etag)
	suite.Equal(http.StatusNotModified, w.Code)
	suite.Empty(w.Body.String())
}

func (suite *HandlersTestSuite) TestExportContract() {
	c := suite.createContract()

	w := suite.request(http.MethodPost, "/admin/contracts/"+c.ID.String()+"/export", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var result services.ExportResult
	suite.Require().NoError(json.Unmarshal(suite.decode(w).Data, &result))
	suite.Equal(fmt.Sprintf("contract-%d.html", c.ContractNumber), result.Filename)
	suite.NotEmpty(result.URL)
	suite.Positive(result.Size)
}

func (suite *HandlersTestSuite) TestIdentityLookup() {
	client := testutil.CreateClient(suite.T(), suite.db, "client@example.ro", "Ion Popescu")
	path := "/admin/identity/" + client.ID.String()

	w := suite.request(http.MethodPut, path, map[string]string{"localitatea": "Cluj-Napoca", "cnp": "1850101123456"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request(http.MethodGet, path, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var lookup services.IdentityLookup
	suite.Require().NoError(json.Unmarshal(suite.decode(w).Data, &lookup))
	suite.Require().NotNil(lookup.DocumentData)
	suite.Equal("1850101123456", models.StringValue(lookup.DocumentData.CNP))

	w = suite.request(http.MethodGet, "/admin/identity/"+uuid.NewString(), nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestCarRequestOfferWithoutSMTP() {
	client := testutil.CreateClient(suite.T(), suite.db, "client@example.ro", "Ion Popescu")
	request := &models.CarRequest{ClientID: client.ID, Brand: "BMW", Model: "X5", Budget: 30000, Status: models.CarRequestStatusNew}
	suite.Require().NoError(suite.db.Create(request).Error)
	path := "/admin/car-requests/" + request.ID.String()

	w := suite.request(http.MethodGet, "/admin/car-requests?search=bmw", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal("1", w.Header().Get("X-Total-Count"))

	w = suite.request(http.MethodPost, path+"/send-offer", map[string]string{"offer_link": "not a link"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("VALIDATION_ERROR", suite.decode(w).Error.Code)

	w = suite.request(http.MethodPost, path+"/send-offer", map[string]string{"offer_link": "https://autoimport.ro/oferte/bmw-x5"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var stored models.CarRequest
	suite.Require().NoError(suite.db.First(&stored, "id = ?", request.ID).Error)
	suite.Equal(models.CarRequestStatusOfferSent, stored.Status)
}

func (suite *HandlersTestSuite) TestDashboardAndClients() {
	client := testutil.CreateClient(suite.T(), suite.db, "client@example.ro", "Ion Popescu")
	suite.createContract()

	w := suite.request(http.MethodGet, "/admin/dashboard", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var stats services.AdminDashboardStats
	suite.Require().NoError(json.Unmarshal(suite.decode(w).Data, &stats))
	suite.Equal(int64(1), stats.TotalContracts)
	suite.Equal(int64(1), stats.TotalClients)

	w = suite.request(http.MethodGet, "/admin/clients?search=popescu", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal("1", w.Header().Get("X-Total-Count"))

	w = suite.request(http.MethodPut, "/admin/clients/"+client.ID.String()+"/status", map[string]string{"status": "suspended"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request(http.MethodPut, "/admin/clients/"+suite.admin.ID.String()+"/status", map[string]string{"status": "suspended"})
	suite.Equal(http.StatusForbidden, w.Code)
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
