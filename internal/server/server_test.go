package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/goodworks/donations/internal/donation"
	server_mocks "github.com/goodworks/donations/internal/server/mocks"
	"github.com/goodworks/donations/internal/store"
)

func newTestServer(t *testing.T) (*Server, *server_mocks.MockDonationStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockStore := server_mocks.NewMockDonationStore(ctrl)
	sessions, err := NewSessions("admin", "secret", Viewer{Name: "Venkatesh", Initials: "V"})
	require.NoError(t, err)

	srv := New(mockStore, sessions, Config{
		PublicPaths: []string{"/", "/sign-in", "/healthz", "/metrics", "/api/session"},
	}, zap.NewNop())
	return srv, mockStore
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandleCreateDonation(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]interface{}
		setupMocks     func(m *server_mocks.MockDonationStore)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "successful creation",
			body: map[string]interface{}{
				"kind":      "Cloth",
				"quantity":  "3 bags",
				"recipient": "Seva Foundation",
				"note":      "weekend pickup preferred",
			},
			setupMocks: func(m *server_mocks.MockDonationStore) {
				m.EXPECT().Create(gomock.Any()).DoAndReturn(func(p store.CreateParams) donation.Donation {
					assert.Equal(t, "Cloth", p.Kind)
					assert.Equal(t, donation.Count(3, "bags"), p.Quantity)
					assert.Equal(t, "Seva Foundation", p.Recipient)
					assert.Equal(t, "weekend pickup preferred", p.Note)
					return donation.Donation{ID: "d1", Status: donation.StatusCreated}
				})
				m.EXPECT().ScheduleAutoAdvance("d1")
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "money donation",
			body: map[string]interface{}{
				"kind":      "Money",
				"quantity":  "₹500",
				"recipient": "HelpHands",
			},
			setupMocks: func(m *server_mocks.MockDonationStore) {
				m.EXPECT().Create(gomock.Any()).DoAndReturn(func(p store.CreateParams) donation.Donation {
					assert.Equal(t, donation.Money(500, "INR"), p.Quantity)
					return donation.Donation{ID: "d2", Status: donation.StatusCreated}
				})
				m.EXPECT().ScheduleAutoAdvance("d2")
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "empty quantity",
			body: map[string]interface{}{
				"kind":      "Cloth",
				"recipient": "Seva Foundation",
			},
			setupMocks:     func(m *server_mocks.MockDonationStore) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Enter quantity or amount",
		},
		{
			name: "unparseable quantity",
			body: map[string]interface{}{
				"kind":      "Cloth",
				"quantity":  "some bags",
				"recipient": "Seva Foundation",
			},
			setupMocks:     func(m *server_mocks.MockDonationStore) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing recipient",
			body: map[string]interface{}{
				"kind":     "Cloth",
				"quantity": "3 bags",
			},
			setupMocks:     func(m *server_mocks.MockDonationStore) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Missing recipient",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, mockStore := newTestServer(t)
			tc.setupMocks(mockStore)

			rr := httptest.NewRecorder()
			srv.handleCreateDonation(rr, jsonRequest(t, http.MethodPost, "/api/donations", tc.body))

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedError != "" {
				assert.JSONEq(t, `{"error":"`+tc.expectedError+`"}`, rr.Body.String())
			}
		})
	}
}

func TestHandleQuickCreate(t *testing.T) {
	srv, mockStore := newTestServer(t)

	mockStore.EXPECT().Create(gomock.Any()).DoAndReturn(func(p store.CreateParams) donation.Donation {
		assert.Equal(t, "Money", p.Kind)
		assert.Equal(t, donation.Money(500, "INR"), p.Quantity)
		assert.Equal(t, "Seva Foundation", p.Recipient)
		return donation.Donation{ID: "q1", Status: donation.StatusCreated}
	})
	mockStore.EXPECT().ScheduleAutoAdvance("q1")

	rr := httptest.NewRecorder()
	srv.handleQuickCreate(rr, jsonRequest(t, http.MethodPost, "/api/donations/quick", map[string]string{"kind": "Money"}))

	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestHandleListDonations(t *testing.T) {
	srv, mockStore := newTestServer(t)

	mockStore.EXPECT().List(store.ListFilter{
		Category: store.CategoryPending,
		Query:    "seva",
		Page:     2,
		Limit:    10,
	}).Return([]donation.Donation{{ID: "d1"}})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/donations?category=Pending&q=seva&page=2&limit=10", nil)
	srv.handleListDonations(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []donation.Donation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "d1", got[0].ID)
}

func TestHandleListDonationsBadParams(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"bad page", "/api/donations?page=zero"},
		{"negative limit", "/api/donations?limit=-1"},
		{"bad status", "/api/donations?status=Lost"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestServer(t)
			rr := httptest.NewRecorder()
			srv.handleListDonations(rr, httptest.NewRequest(http.MethodGet, tc.target, nil))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandleGetDonation(t *testing.T) {
	srv, mockStore := newTestServer(t)

	mockStore.EXPECT().Get("m1").Return(donation.Donation{ID: "m1", Status: donation.StatusCompleted}, true)

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/donations/m1", nil), map[string]string{"id": "m1"})
	rr := httptest.NewRecorder()
	srv.handleGetDonation(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	mockStore.EXPECT().Get("nope").Return(donation.Donation{}, false)
	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/donations/nope", nil), map[string]string{"id": "nope"})
	rr = httptest.NewRecorder()
	srv.handleGetDonation(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Donation not found"}`, rr.Body.String())
}

func TestHandleSchedulePickup(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(m *server_mocks.MockDonationStore)
		expectedStatus int
	}{
		{
			name: "pickup from created",
			setupMocks: func(m *server_mocks.MockDonationStore) {
				m.EXPECT().Get("d1").Return(donation.Donation{ID: "d1", Status: donation.StatusCreated}, true)
				m.EXPECT().Advance("d1", donation.StatusInProgress, "Pickup scheduled").
					Return(donation.Donation{ID: "d1", Status: donation.StatusInProgress}, true)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "already in progress",
			setupMocks: func(m *server_mocks.MockDonationStore) {
				m.EXPECT().Get("d1").Return(donation.Donation{ID: "d1", Status: donation.StatusInProgress}, true)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "not found",
			setupMocks: func(m *server_mocks.MockDonationStore) {
				m.EXPECT().Get("d1").Return(donation.Donation{}, false)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, mockStore := newTestServer(t)
			tc.setupMocks(mockStore)

			req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/api/donations/d1/pickup", nil), map[string]string{"id": "d1"})
			rr := httptest.NewRecorder()
			srv.handleSchedulePickup(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
		})
	}
}

func TestHandleApprove(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(m *server_mocks.MockDonationStore)
		expectedStatus int
	}{
		{
			name: "approve created donation",
			setupMocks: func(m *server_mocks.MockDonationStore) {
				m.EXPECT().Get("d1").Return(donation.Donation{ID: "d1", Status: donation.StatusCreated}, true)
				m.EXPECT().Advance("d1", donation.StatusAccepted, "Approved").
					Return(donation.Donation{ID: "d1", Status: donation.StatusAccepted}, true)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "cannot approve accepted donation",
			setupMocks: func(m *server_mocks.MockDonationStore) {
				m.EXPECT().Get("d1").Return(donation.Donation{ID: "d1", Status: donation.StatusAccepted}, true)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, mockStore := newTestServer(t)
			tc.setupMocks(mockStore)

			req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/api/admin/donations/d1/approve", nil), map[string]string{"id": "d1"})
			rr := httptest.NewRecorder()
			srv.handleApprove(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
		})
	}
}

func TestHandleCompleteTerminalDonation(t *testing.T) {
	srv, mockStore := newTestServer(t)

	mockStore.EXPECT().Get("d1").Return(donation.Donation{ID: "d1", Status: donation.StatusRejected}, true)
	mockStore.EXPECT().Advance("d1", donation.StatusCompleted, "Marked complete").
		Return(donation.Donation{}, false)

	req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/api/admin/donations/d1/complete", nil), map[string]string{"id": "d1"})
	rr := httptest.NewRecorder()
	srv.handleComplete(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Donation can no longer be updated"}`, rr.Body.String())
}

func TestHandleDeleteDonation(t *testing.T) {
	srv, mockStore := newTestServer(t)

	mockStore.EXPECT().Get("d1").Return(donation.Donation{ID: "d1"}, true)
	mockStore.EXPECT().Remove("d1").Return(true)

	req := mux.SetURLVars(httptest.NewRequest(http.MethodDelete, "/api/admin/donations/d1", nil), map[string]string{"id": "d1"})
	rr := httptest.NewRecorder()
	srv.handleDeleteDonation(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Donation deleted"}`, rr.Body.String())
}

func TestHandleStats(t *testing.T) {
	srv, mockStore := newTestServer(t)

	mockStore.EXPECT().Stats().Return(store.Stats{
		Total:     4,
		Completed: 1,
		Pending:   2,
		Items:     2,
		Money:     map[string]int64{"INR": 2500},
	})

	rr := httptest.NewRecorder()
	srv.handleStats(rr, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"total":4,"completed":1,"pending":2,"items":2,"money":{"INR":2500}}`, rr.Body.String())
}
