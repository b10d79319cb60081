package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinaskak/storefront-backend/api/middleware"
	checkoutsvc "github.com/kinaskak/storefront-backend/internal/checkout"
	"github.com/kinaskak/storefront-backend/pkg/enums"
	pkgerrors "github.com/kinaskak/storefront-backend/pkg/errors"
)

type stubCheckoutService struct {
	start      *checkoutsvc.StartResult
	status     *checkoutsvc.StatusDTO
	err        error
	lastCartID *uuid.UUID
	lastStatus enums.CheckoutStatus
	lastForm   checkoutsvc.ShippingDetails
}

func (s *stubCheckoutService) Start(ctx context.Context, cartID *uuid.UUID, details checkoutsvc.ShippingDetails) (*checkoutsvc.StartResult, error) {
	s.lastCartID = cartID
	s.lastForm = details
	return s.start, s.err
}

func (s *stubCheckoutService) UpdateStatus(ctx context.Context, checkoutID uuid.UUID, status enums.CheckoutStatus) (*checkoutsvc.StatusDTO, error) {
	s.lastStatus = status
	return s.status, s.err
}

func (s *stubCheckoutService) GetStatus(ctx context.Context, checkoutID uuid.UUID) (*checkoutsvc.StatusDTO, error) {
	return s.status, s.err
}

func shippingBody() string {
	return `{
		"email": "jon@example.is",
		"firstName": "Jón",
		"lastName": "Jónsson",
		"kennitala": "0101902989",
		"address": "Laugavegur 1",
		"city": "Reykjavík"
	}`
}

func TestStartCheckoutClearsCartCookie(t *testing.T) {
	cartID := uuid.New()
	checkoutID := uuid.New()
	stub := &stubCheckoutService{start: &checkoutsvc.StartResult{
		CheckoutID:  checkoutID,
		RedirectURL: "https://sandboxcheckout.rapyd.net/?token=chk_abc&checkoutId=" + checkoutID.String(),
	}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(shippingBody()))
	req = req.WithContext(middleware.WithCartID(req.Context(), cartID))
	rec := httptest.NewRecorder()

	StartCheckout(stub, testTokenConfig(), testControllerLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, stub.lastCartID)
	assert.Equal(t, cartID, *stub.lastCartID)
	assert.Equal(t, "jon@example.is", stub.lastForm.Email)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "cartId", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)

	data := decodeData(t, rec)
	assert.Equal(t, checkoutID.String(), data["checkoutId"])
	assert.Contains(t, data["redirectUrl"], "checkoutId="+checkoutID.String())
}

func TestStartCheckoutValidationErrorPassesThrough(t *testing.T) {
	stub := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{
		"kennitala": "Kennitala verður að vera 10 tölustafir",
	})}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(shippingBody()))
	rec := httptest.NewRecorder()

	StartCheckout(stub, testTokenConfig(), testControllerLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Result().Cookies(), "cart cookie must survive a failed checkout")

	var envelope struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "Kennitala verður að vera 10 tölustafir", envelope.Error.Details["kennitala"])
}

func TestStartCheckoutMalformedBody(t *testing.T) {
	stub := &stubCheckoutService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"email":`))
	rec := httptest.NewRecorder()

	StartCheckout(stub, testTokenConfig(), testControllerLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, stub.lastCartID)
}

func TestUpdateCheckoutStatus(t *testing.T) {
	checkoutID := uuid.New()
	stub := &stubCheckoutService{status: &checkoutsvc.StatusDTO{
		CheckoutID: checkoutID,
		Status:     enums.CheckoutStatusCompleted,
	}}
	body := `{"checkoutId":"` + checkoutID.String() + `","status":"completed"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/status", strings.NewReader(body))
	rec := httptest.NewRecorder()

	UpdateCheckoutStatus(stub, testControllerLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, enums.CheckoutStatusCompleted, stub.lastStatus)
}

func TestUpdateCheckoutStatusConflict(t *testing.T) {
	stub := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeConflict, "checkout already finalized")}
	body := `{"checkoutId":"` + uuid.NewString() + `","status":"cancelled"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/status", strings.NewReader(body))
	rec := httptest.NewRecorder()

	UpdateCheckoutStatus(stub, testControllerLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetCheckoutStatus(t *testing.T) {
	checkoutID := uuid.New()
	stub := &stubCheckoutService{status: &checkoutsvc.StatusDTO{
		CheckoutID: checkoutID,
		Status:     enums.CheckoutStatusPending,
	}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/"+checkoutID.String(), nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", checkoutID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec := httptest.NewRecorder()

	GetCheckoutStatus(stub, testControllerLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, "pending", data["status"])
}

func TestGetCheckoutStatusInvalidID(t *testing.T) {
	stub := &stubCheckoutService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/not-a-uuid", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec := httptest.NewRecorder()

	GetCheckoutStatus(stub, testControllerLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
