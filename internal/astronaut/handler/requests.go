package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"stargate/internal/astronaut/models"
	dErrors "stargate/pkg/domain-errors"
)

const maxBodyBytes = 1 << 16

// RecordDutyRequest is the body of POST /astronautduty.
type RecordDutyRequest struct {
	Name          string `json:"name"`
	Rank          string `json:"rank"`
	DutyTitle     string `json:"dutyTitle"`
	DutyStartDate string `json:"dutyStartDate"`
}

// Normalize trims surrounding whitespace from every field.
func (r *RecordDutyRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Rank = strings.TrimSpace(r.Rank)
	r.DutyTitle = strings.TrimSpace(r.DutyTitle)
	r.DutyStartDate = strings.TrimSpace(r.DutyStartDate)
}

// Validate checks required fields. Date parsing happens in Command.
func (r *RecordDutyRequest) Validate() error {
	var missing []string
	if r.Name == "" {
		missing = append(missing, "name")
	}
	if r.Rank == "" {
		missing = append(missing, "rank")
	}
	if r.DutyTitle == "" {
		missing = append(missing, "dutyTitle")
	}
	if r.DutyStartDate == "" {
		missing = append(missing, "dutyStartDate")
	}
	if len(missing) > 0 {
		return dErrors.New(dErrors.CodeValidation, "missing required fields: "+strings.Join(missing, ", "))
	}
	return nil
}

// Command converts the request into the service command.
func (r *RecordDutyRequest) Command() (models.RecordDutyCommand, error) {
	start, err := models.ParseDate(r.DutyStartDate)
	if err != nil {
		return models.RecordDutyCommand{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "dutyStartDate must be YYYY-MM-DD")
	}
	return models.RecordDutyCommand{
		Name:      r.Name,
		Rank:      r.Rank,
		DutyTitle: r.DutyTitle,
		StartDate: start,
	}, nil
}

// IDResponse carries the identifier of a created or updated resource.
type IDResponse struct {
	ID string `json:"id"`
}

type PersonResponse struct {
	Person *models.PersonAstronaut `json:"person"`
}

type PeopleResponse struct {
	People []*models.PersonAstronaut `json:"people"`
}

// decodeName reads a JSON string body such as "Jane Doe".
func decodeName(r *http.Request) (string, error) {
	var name string
	if err := decodeJSON(r, &name); err != nil {
		return "", err
	}
	return name, nil
}

func decodeRecordDuty(r *http.Request) (*RecordDutyRequest, error) {
	var req RecordDutyRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return dErrors.New(dErrors.CodeBadRequest, "request body is required")
		}
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid json payload")
	}
	return nil
}
