package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-calendar/internal/auth"
	"github.com/hackgods/clinic-calendar/internal/calendar"
	"github.com/hackgods/clinic-calendar/internal/clinic"
)

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// Auth

func signUpHandler(svc AuthService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.Credentials
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		u, err := svc.SignUp(r.Context(), req)
		if err != nil {
			handleError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

func loginHandler(svc AuthService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.Credentials
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		sess, err := svc.SignIn(r.Context(), req)
		if err != nil {
			handleError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func logoutHandler(svc AuthService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.SignOut(r.Context(), tokenFrom(r.Context())); err != nil {
			handleError(w, log, err)
			return
		}

		resp := LogoutResponse{Status: "signed_out"}
		if claims, ok := ClaimsFrom(r.Context()); ok {
			resp.UserID = claims.Subject
		}
		log.Info("session revoked",
			zap.String("user_id", resp.UserID),
			zap.String("request_id", GetRequestID(r.Context())),
		)
		writeJSON(w, http.StatusOK, resp)
	}
}

// Patients

// listPatientsHandler serves GET /patients?q=&sort=name|recent.
func listPatientsHandler(svc ClinicService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		order, err := clinic.ParsePatientOrder(q.Get("sort"))
		if err != nil {
			handleError(w, log, err)
			return
		}

		patients, err := svc.SearchPatients(r.Context(), q.Get("q"))
		if err != nil {
			handleError(w, log, err)
			return
		}
		patients = clinic.SortPatients(patients, order)
		if patients == nil {
			patients = []clinic.Patient{}
		}
		writeJSON(w, http.StatusOK, patients)
	}
}

func getPatientHandler(svc ClinicService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		p, err := svc.GetPatient(r.Context(), id)
		if err != nil {
			handleError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func createPatientHandler(svc ClinicService, loc *time.Location, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PatientRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		in, err := req.Input(loc)
		if err != nil {
			handleError(w, log, err)
			return
		}

		p, err := svc.CreatePatient(r.Context(), in)
		if err != nil {
			handleError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func updatePatientHandler(svc ClinicService, loc *time.Location, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		var req PatientRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		in, err := req.Input(loc)
		if err != nil {
			handleError(w, log, err)
			return
		}

		p, err := svc.UpdatePatient(r.Context(), id, in)
		if err != nil {
			handleError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// Appointments

func listAppointmentsHandler(svc ClinicService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		start, err := time.Parse(time.RFC3339Nano, q.Get("start"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start", "start must be an RFC3339 timestamp")
			return
		}
		end, err := time.Parse(time.RFC3339Nano, q.Get("end"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end", "end must be an RFC3339 timestamp")
			return
		}

		appts, err := svc.ListAppointments(r.Context(), start, end)
		if err != nil {
			handleError(w, log, err)
			return
		}
		if appts == nil {
			appts = []clinic.Appointment{}
		}
		writeJSON(w, http.StatusOK, appts)
	}
}

func getAppointmentHandler(svc ClinicService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		a, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			handleError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func createAppointmentHandler(svc ClinicService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req clinic.NewAppointment
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		a, err := svc.CreateAppointment(r.Context(), req)
		if err != nil {
			handleError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

func updateAppointmentHandler(svc ClinicService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		var patch clinic.AppointmentPatch
		if err := decodeJSON(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		a, err := svc.UpdateAppointment(r.Context(), id, patch)
		if err != nil {
			handleError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func deleteAppointmentHandler(svc ClinicService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		if err := svc.DeleteAppointment(r.Context(), id); err != nil {
			handleError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Calendar

// weekLoader resolves ?date= (today when absent) into a week with its
// appointments bucketed per day.
type weekLoader struct {
	svc ClinicService
	loc *time.Location
	now func() time.Time
	log *zap.Logger
}

func (l weekLoader) load(w http.ResponseWriter, r *http.Request) (WeekResponse, bool) {
	ref := l.now().In(l.loc)
	if s := strings.TrimSpace(r.URL.Query().Get("date")); s != "" {
		d, err := calendar.ParseDate(s, l.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return WeekResponse{}, false
		}
		ref = d
	}

	week := calendar.WeekRange(ref)
	appts, err := l.svc.ListAppointments(r.Context(), week.Start, week.End)
	if err != nil {
		handleError(w, l.log, err)
		return WeekResponse{}, false
	}
	return WeekResponse{Week: week, Days: calendar.BucketByDay(appts, calendar.WeekDays(ref))}, true
}

func weekHandler(l weekLoader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, ok := l.load(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func weekICSHandler(l weekLoader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, ok := l.load(w, r)
		if !ok {
			return
		}

		body := calendar.ExportICS(resp.Week, resp.Days, l.now())
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition",
			`attachment; filename="week-`+resp.Week.Start.Format("2006-01-02")+`.ics"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}

func statsHandler(svc ClinicService, now func() time.Time, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context(), now())
		if err != nil {
			handleError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
