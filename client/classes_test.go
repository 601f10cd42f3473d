package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"attendsheets/models"

	"github.com/stretchr/testify/require"
)

func decodeBackendClass(t *testing.T, raw string) backendClass {
	t.Helper()
	var bc backendClass
	require.NoError(t, json.Unmarshal([]byte(raw), &bc))
	return bc
}

func TestClassFromBackendDefaults(t *testing.T) {
	cls := classFromBackend(decodeBackendClass(t, `{"class_id": "7", "name": "X"}`))

	require.Equal(t, 7, cls.ID)
	require.Equal(t, "X", cls.Name)
	require.NotNil(t, cls.Students)
	require.Empty(t, cls.Students)
	require.NotNil(t, cls.CustomColumns)
	require.Empty(t, cls.CustomColumns)
	require.Equal(t, models.DefaultThresholds(), *cls.Thresholds)
}

func TestClassFromBackendNumericID(t *testing.T) {
	cls := classFromBackend(decodeBackendClass(t, `{"id": 42, "name": "Physics"}`))
	require.Equal(t, 42, cls.ID)

	// class_id wins over id when both are present.
	cls = classFromBackend(decodeBackendClass(t, `{"class_id": 3, "id": 42, "name": "Physics"}`))
	require.Equal(t, 3, cls.ID)
}

func TestClassFromBackendColumnSpellings(t *testing.T) {
	snake := `{"class_id": 1, "name": "A", "custom_columns": [{"id": 1, "label": "Homework", "type": "text"}]}`
	cls := classFromBackend(decodeBackendClass(t, snake))
	require.Len(t, cls.CustomColumns, 1)
	require.Equal(t, "Homework", cls.CustomColumns[0].Label)

	camel := `{"class_id": 1, "name": "A", "customColumns": [{"id": 2, "label": "Quiz", "type": "number"}]}`
	cls = classFromBackend(decodeBackendClass(t, camel))
	require.Len(t, cls.CustomColumns, 1)
	require.Equal(t, "Quiz", cls.CustomColumns[0].Label)

	both := `{"class_id": 1, "name": "A",
		"custom_columns": [{"id": 1, "label": "Homework", "type": "text"}],
		"customColumns": [{"id": 2, "label": "Quiz", "type": "number"}]}`
	cls = classFromBackend(decodeBackendClass(t, both))
	require.Len(t, cls.CustomColumns, 1)
	require.Equal(t, "Homework", cls.CustomColumns[0].Label, "custom_columns takes precedence")
}

func TestClassFromBackendKeepsThresholds(t *testing.T) {
	raw := `{"class_id": 1, "name": "A", "thresholds": {"excellent": 99, "good": 80, "moderate": 70, "atRisk": 40}}`
	cls := classFromBackend(decodeBackendClass(t, raw))
	require.Equal(t, models.AttendanceThresholds{Excellent: 99, Good: 80, Moderate: 70, AtRisk: 40}, *cls.Thresholds)

	// An empty thresholds object counts as absent.
	raw = `{"class_id": 1, "name": "A", "thresholds": {}}`
	cls = classFromBackend(decodeBackendClass(t, raw))
	require.Equal(t, models.DefaultThresholds(), *cls.Thresholds)
}

func TestClassToBackendRoundTrip(t *testing.T) {
	raw := `{"class_id": "12", "name": "Chemistry",
		"custom_columns": [{"id": 5, "label": "Lab", "type": "select", "options": ["pass", "fail"]}],
		"thresholds": {"excellent": 95, "good": 85, "moderate": 70, "atRisk": 50}}`
	cls := classFromBackend(decodeBackendClass(t, raw))

	payload := classToBackend(cls)
	require.Equal(t, "12", payload.ClassID)
	require.Equal(t, "Chemistry", payload.Name)
	require.Equal(t, *cls.Thresholds, payload.Thresholds)
	require.Equal(t, cls.CustomColumns, payload.CustomColumns)
}

func TestClassToBackendFillsDefaults(t *testing.T) {
	payload := classToBackend(models.Class{ID: 9, Name: "B"})
	require.Equal(t, "9", payload.ClassID)
	require.Equal(t, models.DefaultThresholds(), payload.Thresholds)
	require.NotNil(t, payload.CustomColumns)
	require.Empty(t, payload.CustomColumns)
}

func TestGetAllClasses(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/classes", r.URL.Path)
		w.Write([]byte(`{"classes": [{"class_id": "1", "name": "Math"}, {"class_id": 2, "name": "Art"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenProvider(StaticToken("tok-123")))
	classes, err := c.GetAllClasses(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-123", gotAuth)
	require.Len(t, classes, 2)
	require.Equal(t, 1, classes[0].ID)
	require.Equal(t, 2, classes[1].ID)
	require.Equal(t, models.DefaultThresholds(), *classes[0].Thresholds)
}

func TestGetClassPropagatesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Class not found"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetClass(context.Background(), 5)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Equal(t, "Class not found", apiErr.Message)
}

func TestSyncClasses(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/classes":
			w.Write([]byte(`{"classes": [{"class_id": "1", "name": "Math"}]}`))
		case r.Method == http.MethodPut && r.URL.Path == "/classes/1":
			var payload classPayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			require.Equal(t, "1", payload.ClassID)
			w.Write([]byte(`{"success": true, "class": {"class_id": "1", "name": "Math"}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/classes":
			var payload classPayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			require.Equal(t, "2", payload.ClassID)
			w.Write([]byte(`{"success": true, "class": {"class_id": "2", "name": "Art"}}`))
		default:
			t.Fatalf("unexpected call: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	local := []models.Class{{ID: 1, Name: "Math"}, {ID: 2, Name: "Art"}}
	result, err := c.SyncClasses(context.Background(), local)
	require.NoError(t, err)
	require.Len(t, result, 1)

	// One update for the known class, one create for the new one, in
	// input order, then exactly one final re-fetch.
	require.Equal(t, []string{
		"GET /classes",
		"PUT /classes/1",
		"POST /classes",
		"GET /classes",
	}, calls)
}

func TestLoadClassesNeverFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	classes := c.LoadClasses(context.Background())
	require.NotNil(t, classes)
	require.Empty(t, classes)

	srv.Close()
	classes = c.LoadClasses(context.Background())
	require.NotNil(t, classes)
	require.Empty(t, classes)
}

func TestDeleteClass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/classes/4", r.URL.Path)
		w.Write([]byte(`{"success": true, "message": "Class deleted successfully"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	ok, err := c.DeleteClass(context.Background(), 4)
	require.NoError(t, err)
	require.True(t, ok)
}
