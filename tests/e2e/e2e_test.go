package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"stagegear/internal/audit"
	"stagegear/internal/database"
	"stagegear/internal/domain"
	"stagegear/internal/middleware"
	"stagegear/internal/modules/auth"
	"stagegear/internal/modules/bag"
	"stagegear/internal/modules/equipment"
	"stagegear/internal/modules/event"
	"stagegear/internal/modules/report"
	"stagegear/internal/modules/reservation"
	"stagegear/internal/modules/transaction"
	jwtsvc "stagegear/internal/pkg/jwt"
	"stagegear/internal/repository"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	token  string
}

type apiResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *apiError      `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:e2e_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	hash, err := bcrypt.GenerateFromPassword([]byte("admin12345"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &domain.User{
		Username:     "admin",
		Email:        "admin@stagegear.local",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
	require.NoError(t, db.Create(admin).Error)

	zl := zap.NewNop()
	userRepo := repository.NewUserRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	bagRepo := repository.NewBagRepository(db)
	eventRepo := repository.NewEventRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	jwtService := jwtsvc.New("e2e-test-secret", time.Hour)
	recorder := audit.NewRecorder(zl)

	r := gin.New()
	api := r.Group("/api/v1")

	authed := api.Group("")
	authed.Use(middleware.Auth(jwtService))
	operators := api.Group("")
	operators.Use(middleware.Auth(jwtService), middleware.RequireRole(domain.RoleOperator))
	managers := api.Group("")
	managers.Use(middleware.Auth(jwtService), middleware.RequireRole(domain.RoleManager))
	admins := api.Group("")
	admins.Use(middleware.Auth(jwtService), middleware.AdminOnly())

	auth.NewHandler(auth.NewService(userRepo, jwtService, zl)).RegisterRoutes(api, authed, admins)
	equipment.NewHandler(equipment.NewService(db, equipmentRepo, nil, zl)).RegisterRoutes(authed, admins)
	bag.NewHandler(bag.NewService(db, bagRepo, equipmentRepo, zl)).RegisterRoutes(authed, admins)
	event.NewHandler(event.NewService(eventRepo, zl)).RegisterRoutes(authed, managers)
	reservation.NewHandler(reservation.NewService(db, reservationRepo, equipmentRepo, bagRepo, eventRepo, nil, zl)).RegisterRoutes(authed, managers)
	transaction.NewHandler(transaction.NewService(db, transactionRepo, equipmentRepo, bagRepo, eventRepo, recorder, nil, zl)).RegisterRoutes(authed, operators)
	report.NewHandler(report.NewService(equipmentRepo, eventRepo, transactionRepo, userRepo, auditRepo, zl)).RegisterRoutes(authed, admins)

	env := &testEnv{router: r, db: db}
	env.token = env.login(t)
	return env
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	res := e.request(t, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"login":    "admin",
		"password": "admin12345",
	}, "")
	require.Equal(t, http.StatusOK, res.Code)

	body := decode(t, res)
	require.True(t, body.Success)
	token, _ := body.Data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (e *testEnv) request(t *testing.T, method, path string, payload any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res := httptest.NewRecorder()
	e.router.ServeHTTP(res, req)
	return res
}

func decode(t *testing.T, res *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var body apiResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	return body
}

func entityID(t *testing.T, body apiResponse, key string) string {
	t.Helper()
	entity, ok := body.Data[key].(map[string]any)
	require.True(t, ok, "missing %q in response data", key)
	id, _ := entity["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestFullWithdrawalReturnFlow(t *testing.T) {
	env := setupEnv(t)

	// Inventory: a bag with two microphones.
	res := env.request(t, http.MethodPost, "/api/v1/bags", map[string]any{
		"code": "BAG-01", "name": "Audio kit",
	}, env.token)
	require.Equal(t, http.StatusCreated, res.Code)
	bagID := entityID(t, decode(t, res), "bag")

	for _, code := range []string{"MIC-001", "MIC-002"} {
		res = env.request(t, http.MethodPost, "/api/v1/equipment", map[string]any{
			"code": code, "name": "Shure SM58", "category": "audio",
		}, env.token)
		require.Equal(t, http.StatusCreated, res.Code)

		res = env.request(t, http.MethodPost, "/api/v1/bags/"+bagID+"/equipment/"+code, nil, env.token)
		require.Equal(t, http.StatusOK, res.Code)
	}

	// Event, confirmed so reservations open up.
	start := time.Now().Add(24 * time.Hour).UTC()
	end := start.Add(8 * time.Hour)
	res = env.request(t, http.MethodPost, "/api/v1/events", map[string]any{
		"code": "EVT-01", "name": "Launch night", "type": "show",
		"start_date": start.Format(time.RFC3339), "end_date": end.Format(time.RFC3339),
	}, env.token)
	require.Equal(t, http.StatusCreated, res.Code)
	eventID := entityID(t, decode(t, res), "event")

	res = env.request(t, http.MethodPut, "/api/v1/events/"+eventID, map[string]any{
		"status": "confirmed",
	}, env.token)
	require.Equal(t, http.StatusOK, res.Code)

	// Reserve the whole bag for the event window.
	res = env.request(t, http.MethodPost, "/api/v1/reservations", map[string]any{
		"bag_id": bagID, "event_id": eventID,
		"start_date": start.Format(time.RFC3339), "end_date": end.Format(time.RFC3339),
	}, env.token)
	require.Equal(t, http.StatusCreated, res.Code)

	var members []domain.Equipment
	require.NoError(t, env.db.Find(&members, "bag_id = ?", bagID).Error)
	require.Len(t, members, 2)
	for _, m := range members {
		assert.Equal(t, domain.EquipmentReserved, m.Status, m.Code)
	}

	// A second overlapping reservation for the same bag is refused even
	// when the bag status was reset behind the engine's back.
	require.NoError(t, env.db.Model(&domain.Bag{}).Where("id = ?", bagID).
		Update("status", domain.BagAvailable).Error)
	res = env.request(t, http.MethodPost, "/api/v1/reservations", map[string]any{
		"bag_id": bagID, "event_id": eventID,
		"start_date": start.Format(time.RFC3339), "end_date": end.Format(time.RFC3339),
	}, env.token)
	require.Equal(t, http.StatusConflict, res.Code)
	errBody := decode(t, res)
	require.NotNil(t, errBody.Error)
	assert.Equal(t, "RESERVATION_CONFLICT", errBody.Error.Code)
	require.NoError(t, env.db.Model(&domain.Bag{}).Where("id = ?", bagID).
		Update("status", domain.BagReserved).Error)

	// Withdraw the bag: members go in use, the event starts.
	res = env.request(t, http.MethodPost, "/api/v1/transactions", map[string]any{
		"bag_id": bagID, "event_id": eventID, "transaction_type": "withdrawal",
		"scheduled_date": start.Format(time.RFC3339),
	}, env.token)
	require.Equal(t, http.StatusCreated, res.Code)

	var gotEvent domain.Event
	require.NoError(t, env.db.First(&gotEvent, "id = ?", eventID).Error)
	assert.Equal(t, domain.EventInProgress, gotEvent.Status)

	require.NoError(t, env.db.Find(&members, "bag_id = ?", bagID).Error)
	for _, m := range members {
		assert.Equal(t, domain.EquipmentInUse, m.Status, m.Code)
	}

	// Return the bag: members come back, the event stays in progress
	// because the 24-hour window after end_date has not passed.
	res = env.request(t, http.MethodPost, "/api/v1/transactions", map[string]any{
		"bag_id": bagID, "event_id": eventID, "transaction_type": "return",
		"scheduled_date": end.Format(time.RFC3339),
	}, env.token)
	require.Equal(t, http.StatusCreated, res.Code)

	require.NoError(t, env.db.First(&gotEvent, "id = ?", eventID).Error)
	assert.Equal(t, domain.EventInProgress, gotEvent.Status)

	require.NoError(t, env.db.Find(&members, "bag_id = ?", bagID).Error)
	for _, m := range members {
		assert.Equal(t, domain.EquipmentAvailable, m.Status, m.Code)
	}

	// The audit trail holds one insert per transaction and one update per
	// member moved by each cascade. Bag status itself is not audited.
	res = env.request(t, http.MethodGet, "/api/v1/reports/audit-log?table_name=transactions", nil, env.token)
	require.Equal(t, http.StatusOK, res.Code)
	body := decode(t, res)
	entries, ok := body.Data["audit_log"].([]any)
	require.True(t, ok)
	assert.Len(t, entries, 2)

	res = env.request(t, http.MethodGet, "/api/v1/reports/audit-log?table_name=equipment", nil, env.token)
	require.Equal(t, http.StatusOK, res.Code)
	body = decode(t, res)
	entries, ok = body.Data["audit_log"].([]any)
	require.True(t, ok)
	assert.Len(t, entries, 4)
}

func TestRoleEnforcement(t *testing.T) {
	env := setupEnv(t)

	// A viewer can read but cannot mutate.
	res := env.request(t, http.MethodPost, "/api/v1/users", map[string]any{
		"username": "viewer", "email": "viewer@stagegear.local",
		"password": "viewer12345", "role": "viewer",
	}, env.token)
	require.Equal(t, http.StatusCreated, res.Code)

	loginRes := env.request(t, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"login": "viewer", "password": "viewer12345",
	}, "")
	require.Equal(t, http.StatusOK, loginRes.Code)
	viewerToken, _ := decode(t, loginRes).Data["token"].(string)
	require.NotEmpty(t, viewerToken)

	res = env.request(t, http.MethodGet, "/api/v1/equipment", nil, viewerToken)
	assert.Equal(t, http.StatusOK, res.Code)

	res = env.request(t, http.MethodPost, "/api/v1/equipment", map[string]any{
		"code": "MIC-001", "name": "Shure SM58", "category": "audio",
	}, viewerToken)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = env.request(t, http.MethodGet, "/api/v1/reports/audit-log", nil, viewerToken)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = env.request(t, http.MethodGet, "/api/v1/equipment", nil, "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}
