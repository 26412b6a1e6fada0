package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/alexjbarnes/fitsync/internal/errors"
	"github.com/alexjbarnes/fitsync/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListActivities_DecodesRecords(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/activity/list", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"records":[
			{"id":20260115,"typeCode":3,"count":42,"createdAt":"2026-01-15 08:00:00","modifiedAt":"2026-01-15 09:30:00"},
			{"id":20260116,"typeCode":1,"createdAt":"2026-01-16 07:00:00"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-1", srv.Client())

	records, err := c.ListActivities(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "tok-1", gotBody["token"])
	assert.Equal(t, "owner-1", gotBody["ownerId"])

	first := records[0]
	assert.Equal(t, 20260115, first.ID)
	require.NotNil(t, first.Count)
	assert.Equal(t, 42, *first.Count)
	assert.Equal(t, time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC), first.ModifiedTime())

	// modifiedAt absent falls back to createdAt.
	second := records[1]
	assert.Equal(t, time.Date(2026, 1, 16, 7, 0, 0, 0, time.UTC), second.ModifiedTime())
}

func TestUpsertActivity_ReturnsCanonicalRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/activity/upsert", r.URL.Path)

		var req activityUpsertRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, 20260115, req.Record.ID)

		// Server assigns its own canonical timestamps.
		rec := req.Record
		modified := "2026-01-15 10:00:01"
		rec.ModifiedAt = &modified

		_ = json.NewEncoder(w).Encode(upsertActivityResponse{Created: true, Record: rec})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-1", srv.Client())

	snap := models.ActivitySnapshot{
		Day:        20260115,
		TypeCode:   3,
		Count:      42,
		Comment:    "felt strong",
		CreatedAt:  time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC),
		ModifiedAt: time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
	}

	res, err := c.UpsertActivity(context.Background(), "owner-1", snap)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, time.Date(2026, 1, 15, 10, 0, 1, 0, time.UTC), res.Record.ModifiedTime())
}

func TestUpsertExercise_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req exerciseUpsertRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		_ = json.NewEncoder(w).Encode(upsertExerciseResponse{Created: false, Record: req.Record})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-1", srv.Client())

	snap := models.ExerciseSnapshot{
		ID:         uuid.New(),
		Name:       "Deadlift",
		CreatedAt:  time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		ModifiedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}

	res, err := c.UpsertExercise(context.Background(), "owner-1", snap)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, snap.ID.String(), res.Record.ID)
}

func TestPost_UnauthorizedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "stale-token", srv.Client())

	_, err := c.ListActivities(context.Background(), "owner-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.False(t, IsTransient(err))
}

func TestPost_NotFoundMapsToUnknownOwner(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-1", srv.Client())

	_, err := c.ListActivities(context.Background(), "nobody")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnknownOwner)
}

func TestPost_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-1", srv.Client())

	_, err := c.ListActivities(context.Background(), "owner-1")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestPost_ErrorFieldInOKBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"server overloaded, try again later"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-1", srv.Client())

	err := c.DeleteActivity(context.Background(), "owner-1", 20260115)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.ErrorIs(t, err, apperrors.ErrAPIRequest)
}

func TestPost_BadRequestIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unknown type code"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-1", srv.Client())

	err := c.DeleteExercise(context.Background(), "owner-1", uuid.NewString())
	require.Error(t, err)
	assert.False(t, IsTransient(err))
	assert.ErrorContains(t, err, "unknown type code")
}

func TestPost_NetworkFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, "tok-1", nil)

	_, err := c.ListCountries(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestUpsertActivity_RejectsMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"created":true,"record":{"id":0,"typeCode":3,"createdAt":"not a time"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-1", srv.Client())

	_, err := c.UpsertActivity(context.Background(), "owner-1", models.ActivitySnapshot{Day: 20260115, TypeCode: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAPIResponse)
}

func TestSameHostRedirectPolicy(t *testing.T) {
	first, _ := http.NewRequest(http.MethodPost, "https://api.fitsync.example/activity/list", nil)

	sameHost, _ := http.NewRequest(http.MethodPost, "https://api.fitsync.example/v2/activity/list", nil)
	assert.NoError(t, sameHostRedirectPolicy(sameHost, []*http.Request{first}))

	otherHost, _ := http.NewRequest(http.MethodPost, "https://evil.example/activity/list", nil)
	assert.Error(t, sameHostRedirectPolicy(otherHost, []*http.Request{first}))
}

func TestSanitizeResponseBody(t *testing.T) {
	assert.Equal(t, "plain body", sanitizeResponseBody([]byte("plain body")))
	assert.Equal(t, "a?b", sanitizeResponseBody([]byte{'a', 0x01, 'b'}))

	long := make([]byte, 512)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, sanitizeResponseBody(long), 256)
}

func TestRemoteActivity_Validate(t *testing.T) {
	valid := RemoteActivity{ID: 20260115, TypeCode: 3, CreatedAt: "2026-01-15 08:00:00"}
	assert.NoError(t, valid.Validate())

	badDay := valid
	badDay.ID = 0
	assert.Error(t, badDay.Validate())

	badCreated := valid
	badCreated.CreatedAt = "2026-01-15T08:00:00Z"
	assert.Error(t, badCreated.Validate())

	badCustom := valid
	badID := "not-a-uuid"
	badCustom.LineItems = []RemoteLineItem{{CustomTypeID: &badID, Count: 5}}
	assert.Error(t, badCustom.Validate())
}

func TestRemoteExercise_Validate(t *testing.T) {
	valid := RemoteExercise{ID: uuid.NewString(), Name: "Squat", CreatedAt: "2026-02-01 10:00:00"}
	assert.NoError(t, valid.Validate())

	badID := valid
	badID.ID = "nope"
	assert.Error(t, badID.Validate())

	noName := valid
	noName.Name = ""
	assert.Error(t, noName.Validate())
}

func TestIsTransient_PlainErrors(t *testing.T) {
	assert.False(t, IsTransient(errors.New("boom")))
	assert.True(t, IsTransient(&TransientError{Err: errors.New("boom")}))
}
