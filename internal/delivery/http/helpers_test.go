package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bdticketpro/ticketpro/internal/delivery/http/middleware"
	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/bdticketpro/ticketpro/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// newJSONRequest создает запрос с JSON телом; строка передается как есть
func newJSONRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()

	var raw []byte
	switch v := body.(type) {
	case nil:
	case string:
		raw = []byte(v)
	default:
		var err error
		raw, err = json.Marshal(v)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// withURLParam добавляет параметр пути chi
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// withOperator кладет в контекст claims оператора с заданной ролью
func withOperator(req *http.Request, role domain.UserRole) *http.Request {
	claims := &jwt.Claims{
		UserID: uuid.New(),
		Email:  "operator@ticketpro.test",
		Role:   role,
	}
	return req.WithContext(middleware.WithUserClaims(req.Context(), claims))
}

// decodeBody разбирает JSON ответ
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
