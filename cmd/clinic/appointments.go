package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-calendar/internal/calendar"
	"github.com/hackgods/clinic-calendar/internal/clinic"
)

const (
	defaultTime          = "09:00"
	defaultTreatmentType = "consultation"
)

func appointmentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appt"},
		Short:   "Book, edit and cancel appointments",
	}
	cmd.AddCommand(appointmentAddCmd(a), appointmentUpdateCmd(a), appointmentDeleteCmd(a))
	return cmd
}

func appointmentAddCmd(a *app) *cobra.Command {
	var in calendar.AppointmentInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Book an appointment and show its week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := newRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr())
			v, err := a.view(r)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			// Focus the booked day first so the reload shows the new entry.
			if d, err := calendar.ParseDate(in.ScheduledDate, a.loc); err == nil {
				_ = v.SetWeek(ctx, d)
			}

			created, err := v.CreateAppointment(ctx, in)
			if err != nil {
				return err
			}
			r.flush()
			fmt.Fprintf(cmd.OutOrStdout(), "\nbooked appointment %s\n", created.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.PatientID, "patient", "", "patient id")
	f.StringVar(&in.ScheduledDate, "date", "", "day of the appointment, YYYY-MM-DD")
	f.StringVar(&in.ScheduledTime, "time", defaultTime, "start time, HH:MM")
	f.IntVar(&in.DurationMinutes, "duration", clinic.DefaultDurationMinutes, "length in minutes")
	f.StringVar(&in.TreatmentType, "type", defaultTreatmentType, "treatment type")
	f.StringVar(&in.Notes, "notes", "", "free-form notes")
	return cmd
}

func appointmentUpdateCmd(a *app) *cobra.Command {
	var (
		patientID, date, clock string
		duration               int
		status                 string
		treatment, notes       string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an appointment; only the given flags are updated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid appointment id %q", args[0])
			}

			c, err := a.authedClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			current, err := c.GetAppointment(ctx, id)
			if err != nil {
				return err
			}

			var patch clinic.AppointmentPatch
			flags := cmd.Flags()
			if flags.Changed("patient") {
				pid, err := uuid.Parse(patientID)
				if err != nil {
					return &clinic.ValidationError{Fields: map[string]string{"patient_id": "must be a valid id"}}
				}
				patch.PatientID = &pid
			}
			if flags.Changed("date") || flags.Changed("time") {
				local := current.ScheduledAt.In(a.loc)
				if !flags.Changed("date") {
					date = local.Format("2006-01-02")
				}
				if !flags.Changed("time") {
					clock = local.Format("15:04:05")
				}
				at, err := calendar.ComposeInstant(date, clock, a.loc)
				if err != nil {
					return err
				}
				patch.ScheduledAt = &at
			}
			if flags.Changed("duration") {
				patch.DurationMinutes = &duration
			}
			if flags.Changed("status") {
				s := clinic.AppointmentStatus(status)
				patch.Status = &s
			}
			if flags.Changed("type") {
				patch.TreatmentType = &treatment
			}
			if flags.Changed("notes") {
				patch.Notes = &notes
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to update: pass at least one field flag")
			}

			r := newRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr())
			v, err := a.view(r)
			if err != nil {
				return err
			}
			focus := current.ScheduledAt
			if patch.ScheduledAt != nil {
				focus = *patch.ScheduledAt
			}
			_ = v.SetWeek(ctx, focus)

			if _, err := v.UpdateAppointment(ctx, id, patch); err != nil {
				return err
			}
			r.flush()
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&patientID, "patient", "", "new patient id")
	f.StringVar(&date, "date", "", "new day, YYYY-MM-DD")
	f.StringVar(&clock, "time", "", "new start time, HH:MM")
	f.IntVar(&duration, "duration", 0, "new length in minutes")
	f.StringVar(&status, "status", "", "scheduled, completed or cancelled")
	f.StringVar(&treatment, "type", "", "new treatment type; empty clears it")
	f.StringVar(&notes, "notes", "", "new notes; empty clears them")
	return cmd
}

func appointmentDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an appointment and show its week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid appointment id %q", args[0])
			}

			c, err := a.authedClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			current, err := c.GetAppointment(ctx, id)
			if err != nil {
				return err
			}

			r := newRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr())
			v, err := a.view(r)
			if err != nil {
				return err
			}
			_ = v.SetWeek(ctx, current.ScheduledAt)

			if err := v.DeleteAppointment(ctx, id); err != nil {
				return err
			}
			r.flush()
			fmt.Fprintf(cmd.OutOrStdout(), "\ndeleted appointment %s\n", id)
			return nil
		},
	}
}
