package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/firmbooks/trade_books_app/internal/apperrors"
	"github.com/firmbooks/trade_books_app/internal/core/domain"
	portssvc "github.com/firmbooks/trade_books_app/internal/core/ports/services"
	"github.com/firmbooks/trade_books_app/internal/dto"
	"github.com/firmbooks/trade_books_app/internal/handlers"
	"github.com/firmbooks/trade_books_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock PartyService ---
type MockPartyService struct {
	mock.Mock
}

func (m *MockPartyService) CreateParty(ctx context.Context, req dto.CreatePartyRequest) (*domain.Party, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Party), args.Error(1)
}
func (m *MockPartyService) GetPartyByID(ctx context.Context, partyID string) (*domain.Party, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Party), args.Error(1)
}
func (m *MockPartyService) ListParties(ctx context.Context, limit int, offset int) ([]domain.Party, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Party), args.Error(1)
}
func (m *MockPartyService) UpdateParty(ctx context.Context, partyID string, req dto.UpdatePartyRequest) (*domain.Party, error) {
	args := m.Called(ctx, partyID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Party), args.Error(1)
}
func (m *MockPartyService) DeactivateParty(ctx context.Context, partyID string) error {
	args := m.Called(ctx, partyID)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.PartySvcFacade = (*MockPartyService)(nil)

// --- Test Suite Setup ---
type PartyHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockPartyService *MockPartyService
}

func (suite *PartyHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	suite.mockPartyService = new(MockPartyService)

	cfg := &config.Config{}
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Party: suite.mockPartyService,
	})
}

// --- Test Cases ---

func (suite *PartyHandlerTestSuite) TestCreateParty_Success() {
	reqBody := dto.CreatePartyRequest{
		Name:    "Sharma Traders",
		Address: "Mandi Road",
		Contact: "9876500000",
	}
	now := time.Now()
	created := &domain.Party{
		PartyID:  uuid.NewString(),
		Name:     reqBody.Name,
		Address:  reqBody.Address,
		Contact:  reqBody.Contact,
		IsActive: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	suite.mockPartyService.On("CreateParty",
		mock.Anything,
		reqBody,
	).Return(created, nil).Once()

	body, _ := json.Marshal(reqBody)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/parties", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.PartyResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(created.PartyID, resp.PartyID)
	suite.Equal(created.Name, resp.Name)
	suite.True(resp.IsActive)

	suite.mockPartyService.AssertExpectations(suite.T())
}

func (suite *PartyHandlerTestSuite) TestCreateParty_MissingName() {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/parties", bytes.NewReader([]byte(`{"address":"somewhere"}`)))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockPartyService.AssertNotCalled(suite.T(), "CreateParty")
}

func (suite *PartyHandlerTestSuite) TestGetParty_NotFound() {
	partyID := uuid.NewString()

	suite.mockPartyService.On("GetPartyByID",
		mock.Anything,
		partyID,
	).Return(nil, apperrors.ErrNotFound).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/parties/"+partyID, nil)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockPartyService.AssertExpectations(suite.T())
}

func (suite *PartyHandlerTestSuite) TestListParties_DefaultsLimit() {
	parties := []domain.Party{
		{PartyID: uuid.NewString(), Name: "Alpha Mills", IsActive: true},
		{PartyID: uuid.NewString(), Name: "Beta Agro", IsActive: true},
	}

	suite.mockPartyService.On("ListParties",
		mock.Anything,
		20, 0,
	).Return(parties, nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/parties", nil)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.ListPartiesResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Parties, 2)
	suite.Equal("Alpha Mills", resp.Parties[0].Name)

	suite.mockPartyService.AssertExpectations(suite.T())
}

func (suite *PartyHandlerTestSuite) TestDeleteParty_Conflict() {
	partyID := uuid.NewString()

	suite.mockPartyService.On("DeactivateParty",
		mock.Anything,
		partyID,
	).Return(apperrors.ErrValidation).Once()

	req, _ := http.NewRequest(http.MethodDelete, "/api/v1/parties/"+partyID, nil)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockPartyService.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestPartyHandler(t *testing.T) {
	suite.Run(t, new(PartyHandlerTestSuite))
}
