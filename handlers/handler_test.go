package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anjiri1684/freelance_music/database"
	"github.com/anjiri1684/freelance_music/handlers"
	"github.com/anjiri1684/freelance_music/routes"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type api struct {
	t   *testing.T
	app *fiber.App
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), database.Config())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedAdmin(db, "Site Admin", "admin@example.com", "admin-password"))

	app := fiber.New()
	routes.Register(app, handlers.New(db, "test-secret", nil, nil))
	return &api{t: t, app: app}
}

func (a *api) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(a.t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func (a *api) login(email, password string) string {
	a.t.Helper()
	status, body := a.do(fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": email, "password": password})
	require.Equal(a.t, fiber.StatusOK, status, body)
	return body["token"].(string)
}

func TestLessonLifecycleOverHTTP(t *testing.T) {
	a := newAPI(t)
	lessonDate := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")

	status, body := a.do(fiber.MethodPost, "/api/v1/auth/register/teacher", "", fiber.Map{
		"name": "Jane Doe", "email": "jane@example.com", "password": "teacher-pass",
		"instruments": []string{"piano"}, "hourly_rate": 60, "in_person_available": true,
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	teacherID := body["teacher"].(map[string]any)["id"].(string)

	status, body = a.do(fiber.MethodPost, "/api/v1/auth/register/student", "", fiber.Map{
		"name": "John Smith", "email": "john@example.com", "password": "student-pass",
		"primary_instrument": "piano", "skill_level": "beginner", "referral_source": "social media",
	})
	require.Equal(t, fiber.StatusCreated, status, body)

	status, _ = a.do(fiber.MethodPost, "/api/v1/auth/register/student", "", fiber.Map{
		"name": "John Again", "email": "john@example.com", "password": "student-pass",
		"primary_instrument": "piano", "skill_level": "beginner",
	})
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = a.do(fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{"email": "john@example.com", "password": "wrong-pass"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	teacherToken := a.login("jane@example.com", "teacher-pass")
	studentToken := a.login("john@example.com", "student-pass")
	adminToken := a.login("admin@example.com", "admin-password")

	status, body = a.do(fiber.MethodPost, "/api/v1/teacher/availability", teacherToken, fiber.Map{
		"date": lessonDate, "start_time": "10:00", "end_time": "10:45", "lesson_type": "in-person",
	})
	require.Equal(t, fiber.StatusCreated, status, body)

	status, _ = a.do(fiber.MethodPost, "/api/v1/teacher/availability", studentToken, fiber.Map{})
	assert.Equal(t, fiber.StatusForbidden, status)

	booking := fiber.Map{
		"teacher_id": teacherID, "date": lessonDate, "time": "10:00",
		"duration": 45, "lesson_type": "in-person", "instrument": "piano",
	}
	status, body = a.do(fiber.MethodPost, "/api/v1/lessons", studentToken, booking)
	require.Equal(t, fiber.StatusCreated, status, body)
	lessonID := body["lesson_id"].(string)
	lesson := body["lesson"].(map[string]any)
	assert.Equal(t, 45.0, lesson["total_cost"])
	assert.Equal(t, 4.5, lesson["platform_fee"])
	assert.Equal(t, 40.5, lesson["teacher_earnings"])

	status, body = a.do(fiber.MethodPost, "/api/v1/lessons", studentToken, booking)
	assert.Equal(t, fiber.StatusConflict, status, body)

	status, body = a.do(fiber.MethodPost, "/api/v1/teacher/lessons/"+lessonID+"/complete", teacherToken, fiber.Map{})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status, body)

	status, body = a.do(fiber.MethodPost, "/api/v1/payment-methods", studentToken, fiber.Map{
		"type": "credit_card", "is_primary": true, "card_number": "4242424242424242",
		"cvv": "123", "exp_month": 12, "exp_year": time.Now().Year() + 2,
	})
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Equal(t, "4242", body["card_last_four"])
	assert.NotContains(t, body, "card_number")

	status, body = a.do(fiber.MethodPost, "/api/v1/teacher/lessons/"+lessonID+"/complete", teacherToken, fiber.Map{"notes": "great", "student_rating": 5})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Regexp(t, `^TXN_\d+_[a-z0-9]{9}$`, body["transaction_id"])
	assert.Equal(t, 45.0, body["amount"])

	status, _ = a.do(fiber.MethodPost, "/api/v1/teacher/lessons/"+lessonID+"/complete", teacherToken, fiber.Map{})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, body = a.do(fiber.MethodGet, "/api/v1/admin/revenue", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 45.0, body["total_revenue"])
	assert.Equal(t, 4.5, body["platform_fees"])

	status, _ = a.do(fiber.MethodGet, "/api/v1/admin/dashboard", studentToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = a.do(fiber.MethodGet, "/api/v1/admin/dashboard", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, body["total_lessons"])
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	a := newAPI(t)

	status, _ := a.do(fiber.MethodGet, "/api/v1/lessons/me", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = a.do(fiber.MethodGet, "/api/v1/lessons/available", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestValidateCardEndpoint(t *testing.T) {
	a := newAPI(t)

	status, body := a.do(fiber.MethodPost, "/api/v1/payments/validate-card", "", fiber.Map{
		"card_number": "4242424242424241", "cvv": "123", "exp_month": 12, "exp_year": 2099,
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["valid"])
	assert.NotEmpty(t, body["error"])

	status, body = a.do(fiber.MethodPost, "/api/v1/payments/validate-bank-account", "", fiber.Map{
		"routing_number": "021000021", "account_number": "000123456789",
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["valid"])
}
