package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"stargate/internal/astronaut/handler/mocks"
	"stargate/internal/astronaut/models"
	id "stargate/pkg/domain"
	dErrors "stargate/pkg/domain-errors"
	"stargate/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	router  http.Handler
	service *mocks.MockService
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.router, s.service = newTestRouter(s.T())
}

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(mockService, logger, nil)
	r := chi.NewRouter()
	h.Register(r)
	return r, mockService
}

func (s *HandlerSuite) TestListPeople() {
	s.Run("wraps people in an envelope", func() {
		rank := "1LT"
		s.service.EXPECT().ListPeople(gomock.Any()).Return([]*models.PersonAstronaut{
			{PersonID: id.NewPersonID(), Name: "Jane Doe"},
			{PersonID: id.NewPersonID(), Name: "John Doe", CurrentRank: &rank},
		}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/person"))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[struct {
			People []map[string]any `json:"people"`
		}](s.T(), rr)
		require.Len(s.T(), resp.People, 2)
		assert.Equal(s.T(), "Jane Doe", resp.People[0]["name"])
		assert.Nil(s.T(), resp.People[0]["currentRank"])
		assert.Equal(s.T(), "1LT", resp.People[1]["currentRank"])
	})

	s.Run("internal error hides description", func() {
		s.service.EXPECT().ListPeople(gomock.Any()).Return(nil, dErrors.New(dErrors.CodeInternal, "db down"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/person"))

		testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
		body := testutil.UnmarshalErrorResponse(s.T(), rr)
		assert.Equal(s.T(), "internal_error", body["error"])
		assert.NotContains(s.T(), body, "error_description")
	})
}

func (s *HandlerSuite) TestGetPerson() {
	s.Run("decodes escaped names", func() {
		s.service.EXPECT().GetPerson(gomock.Any(), "John Doe").
			Return(&models.PersonAstronaut{PersonID: id.NewPersonID(), Name: "John Doe"}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/person/John%20Doe"))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[PersonResponse](s.T(), rr)
		require.NotNil(s.T(), resp.Person)
		assert.Equal(s.T(), "John Doe", resp.Person.Name)
	})

	s.Run("literal percent in a name is decoded once", func() {
		s.service.EXPECT().GetPerson(gomock.Any(), "100%").
			Return(&models.PersonAstronaut{PersonID: id.NewPersonID(), Name: "100%"}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/person/100%25"))

		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("escaped slash stays inside the name", func() {
		s.service.EXPECT().GetPerson(gomock.Any(), "A/B").
			Return(&models.PersonAstronaut{PersonID: id.NewPersonID(), Name: "A/B"}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/person/A%2FB"))

		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("unknown person is 404", func() {
		s.service.EXPECT().GetPerson(gomock.Any(), "Nobody").
			Return(nil, dErrors.New(dErrors.CodeNotFound, "person not found"))

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/person/Nobody"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}

func (s *HandlerSuite) TestCreatePerson() {
	s.Run("returns 201 with the new id", func() {
		personID := id.NewPersonID()
		s.service.EXPECT().CreatePerson(gomock.Any(), "Jane Doe").Return(personID, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/person", "Jane Doe"))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		testutil.AssertJSONContains(s.T(), rr, "id", personID.String())
	})

	s.Run("duplicate name is 409", func() {
		s.service.EXPECT().CreatePerson(gomock.Any(), "Jane Doe").
			Return(id.PersonID{}, dErrors.New(dErrors.CodeConflict, "person name must be unique"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/person", "Jane Doe"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})

	s.Run("non-string body is rejected before the service", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/person", `{"name":"Jane"}`))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("empty body is rejected", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/person", ""))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("non-json content type is rejected", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/person", `"Jane Doe"`)
		req.Header.Set("Content-Type", "text/plain")

		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestRenamePerson() {
	s.Run("returns the person id", func() {
		personID := id.NewPersonID()
		s.service.EXPECT().RenamePerson(gomock.Any(), "John Doe", "John Smith").Return(personID, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, "/person/John%20Doe", "John Smith"))

		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "id", personID.String())
	})

	s.Run("missing person is 404", func() {
		s.service.EXPECT().RenamePerson(gomock.Any(), "Ghost", "Casper").
			Return(id.PersonID{}, dErrors.New(dErrors.CodeNotFound, "person not found"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, "/person/Ghost", "Casper"))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}

func (s *HandlerSuite) TestRecordDuty() {
	validBody := RecordDutyRequest{
		Name:          "John Doe",
		Rank:          "1LT",
		DutyTitle:     "Commander",
		DutyStartDate: "2024-03-01",
	}

	s.Run("passes a parsed command and returns 201", func() {
		dutyID := id.NewDutyID()
		s.service.EXPECT().RecordDuty(gomock.Any(), models.RecordDutyCommand{
			Name:      "John Doe",
			Rank:      "1LT",
			DutyTitle: "Commander",
			StartDate: models.DateOf(2024, 3, 1),
		}).Return(dutyID, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/astronautduty", validBody))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		testutil.AssertJSONContains(s.T(), rr, "id", dutyID.String())
	})

	s.Run("timestamp start dates are truncated to the day", func() {
		body := validBody
		body.DutyStartDate = "2024-03-01T17:45:00Z"
		s.service.EXPECT().RecordDuty(gomock.Any(), gomock.Cond(func(x any) bool {
			cmd, ok := x.(models.RecordDutyCommand)
			return ok && cmd.StartDate.Equal(models.DateOf(2024, 3, 1))
		})).Return(id.NewDutyID(), nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/astronautduty", body))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	})

	s.Run("unknown person is a bad request", func() {
		s.service.EXPECT().RecordDuty(gomock.Any(), gomock.Any()).
			Return(id.DutyID{}, dErrors.New(dErrors.CodeNotFound, "person not found"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/astronautduty", validBody))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("duplicate duty is 409", func() {
		s.service.EXPECT().RecordDuty(gomock.Any(), gomock.Any()).
			Return(id.DutyID{}, dErrors.New(dErrors.CodeConflict, "duty already recorded"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/astronautduty", validBody))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})

	s.Run("missing fields never reach the service", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/astronautduty",
			RecordDutyRequest{Name: "John Doe", DutyStartDate: "2024-03-01"}))

		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		body := testutil.UnmarshalErrorResponse(s.T(), rr)
		assert.Equal(s.T(), "validation_error", body["error"])
		assert.Contains(s.T(), body["error_description"], "rank")
		assert.Contains(s.T(), body["error_description"], "dutyTitle")
	})

	s.Run("malformed date never reaches the service", func() {
		body := validBody
		body.DutyStartDate = "03/01/2024"

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/astronautduty", body))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *HandlerSuite) TestGetDutyHistory() {
	s.Run("unknown person yields an empty history", func() {
		s.service.EXPECT().GetDutyHistory(gomock.Any(), "Nobody").
			Return(&models.DutyHistory{Duties: []*models.AstronautDuty{}}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/astronautduty/Nobody"))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
		assert.Nil(s.T(), (*resp)["person"])
		assert.Equal(s.T(), []any{}, (*resp)["astronautDuties"])
	})
}

func (s *HandlerSuite) TestRequestIDIsEchoed() {
	s.service.EXPECT().ListPeople(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]*models.PersonAstronaut, error) {
		return []*models.PersonAstronaut{}, nil
	})
	req := testutil.NewRequest(s.T(), http.MethodGet, "/person")
	req.Header.Set("X-Request-ID", "req-123")

	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	assert.Equal(s.T(), "req-123", rr.Header().Get("X-Request-ID"))
}

func TestInternalErrorDetailInDevelopment(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockService(ctrl)
	mockService.EXPECT().ListPeople(gomock.Any()).
		Return(nil, dErrors.Wrap(errors.New("disk full"), dErrors.CodeInternal, "failed to list people"))
	h := New(mockService, slog.New(slog.NewTextHandler(io.Discard, nil)), nil, WithInternalErrorDetail(true))
	r := chi.NewRouter()
	h.Register(r)

	rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/person"))

	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	assert.Contains(t, testutil.UnmarshalErrorResponse(t, rr)["error_description"], "disk full")
}

func TestPanicLogCarriesRequestID(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockService(ctrl)
	mockService.EXPECT().ListPeople(gomock.Any()).DoAndReturn(func(context.Context) ([]*models.PersonAstronaut, error) {
		panic("boom")
	})
	var logs bytes.Buffer
	h := New(mockService, slog.New(slog.NewJSONHandler(&logs, nil)), nil)
	r := chi.NewRouter()
	h.Register(r)

	req := testutil.NewRequest(t, http.MethodGet, "/person")
	req.Header.Set("X-Request-ID", "req-panic")
	rr := testutil.DoRequest(r, req)

	testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
	assert.Contains(t, logs.String(), `"msg":"panic recovered"`)
	assert.Contains(t, logs.String(), `"request_id":"req-panic"`)
}

func TestRecordDutyRequest_Normalize(t *testing.T) {
	req := RecordDutyRequest{Name: "  Jane  ", Rank: " CPT", DutyTitle: "Pilot ", DutyStartDate: " 2024-01-02 "}
	req.Normalize()

	require.NoError(t, req.Validate())
	cmd, err := req.Command()
	require.NoError(t, err)
	assert.Equal(t, "Jane", cmd.Name)
	assert.Equal(t, "CPT", cmd.Rank)
	assert.Equal(t, "Pilot", cmd.DutyTitle)
	assert.Equal(t, "2024-01-02", cmd.StartDate.String())
}
