// Package client talks to the clinic HTTP API. A Client carries one session
// token and satisfies calendar.AppointmentStore.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/hackgods/clinic-calendar/internal/api"
	"github.com/hackgods/clinic-calendar/internal/auth"
	"github.com/hackgods/clinic-calendar/internal/calendar"
	"github.com/hackgods/clinic-calendar/internal/clinic"
)

// APIError is a non-2xx answer. Its message is the server's details text
// when present.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return http.StatusText(e.Status)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ calendar.AppointmentStore = (*Client)(nil)

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if w, ok := out.(io.Writer); ok {
		_, err := io.Copy(w, resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body api.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Code = body.Error
		apiErr.Message = body.Details
	}
	return apiErr
}

// Auth

func (c *Client) SignUp(ctx context.Context, in auth.Credentials) (*auth.User, error) {
	var u auth.User
	if err := c.do(ctx, http.MethodPost, "/auth/signup", nil, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Login(ctx context.Context, in auth.Credentials) (*auth.Session, error) {
	var s auth.Session
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// Patients

func (c *Client) ListPatients(ctx context.Context) ([]clinic.Patient, error) {
	return c.SearchPatients(ctx, "")
}

func (c *Client) SearchPatients(ctx context.Context, term string) ([]clinic.Patient, error) {
	return c.FindPatients(ctx, term, clinic.OrderByName)
}

// FindPatients filters by term and asks the server for the given order.
func (c *Client) FindPatients(ctx context.Context, term string, order clinic.PatientOrder) ([]clinic.Patient, error) {
	q := url.Values{}
	if term != "" {
		q.Set("q", term)
	}
	if order != "" && order != clinic.OrderByName {
		q.Set("sort", string(order))
	}
	var out []clinic.Patient
	if err := c.do(ctx, http.MethodGet, "/patients", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPatient(ctx context.Context, id uuid.UUID) (*clinic.Patient, error) {
	var p clinic.Patient
	if err := c.do(ctx, http.MethodGet, "/patients/"+id.String(), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreatePatient(ctx context.Context, in api.PatientRequest) (*clinic.Patient, error) {
	var p clinic.Patient
	if err := c.do(ctx, http.MethodPost, "/patients", nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdatePatient(ctx context.Context, id uuid.UUID, in api.PatientRequest) (*clinic.Patient, error) {
	var p clinic.Patient
	if err := c.do(ctx, http.MethodPut, "/patients/"+id.String(), nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Appointments

func (c *Client) ListAppointments(ctx context.Context, start, end time.Time) ([]clinic.Appointment, error) {
	q := url.Values{
		"start": {start.Format(time.RFC3339Nano)},
		"end":   {end.Format(time.RFC3339Nano)},
	}
	var out []clinic.Appointment
	if err := c.do(ctx, http.MethodGet, "/appointments", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAppointment(ctx context.Context, id uuid.UUID) (*clinic.Appointment, error) {
	var a clinic.Appointment
	if err := c.do(ctx, http.MethodGet, "/appointments/"+id.String(), nil, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) CreateAppointment(ctx context.Context, in clinic.NewAppointment) (*clinic.Appointment, error) {
	var a clinic.Appointment
	if err := c.do(ctx, http.MethodPost, "/appointments", nil, in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) UpdateAppointment(ctx context.Context, id uuid.UUID, patch clinic.AppointmentPatch) (*clinic.Appointment, error) {
	var a clinic.Appointment
	if err := c.do(ctx, http.MethodPatch, "/appointments/"+id.String(), nil, patch, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/appointments/"+id.String(), nil, nil, nil)
}

// Calendar

// WeekICS writes the iCalendar export of the week containing date to w.
func (c *Client) WeekICS(ctx context.Context, date time.Time, w io.Writer) error {
	q := url.Values{"date": {date.Format("2006-01-02")}}
	return c.do(ctx, http.MethodGet, "/calendar/week.ics", q, nil, w)
}

func (c *Client) Stats(ctx context.Context) (clinic.Stats, error) {
	var s clinic.Stats
	err := c.do(ctx, http.MethodGet, "/stats", nil, nil, &s)
	return s, err
}
