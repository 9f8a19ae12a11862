package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-calendar/internal/api"
	"github.com/hackgods/clinic-calendar/internal/clinic"
)

func patientsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "List and register patients",
	}
	cmd.AddCommand(patientListCmd(a), patientAddCmd(a))
	return cmd
}

func patientListCmd(a *app) *cobra.Command {
	var (
		query  string
		recent bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List patients by first name or newest first, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			order := clinic.OrderByName
			if recent {
				order = clinic.OrderByRecent
			}
			patients, err := c.FindPatients(cmd.Context(), query, order)
			if err != nil {
				return err
			}
			renderPatients(cmd.OutOrStdout(), patients)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "q", "q", "", "match name, email or phone")
	cmd.Flags().BoolVar(&recent, "recent", false, "newest registrations first")
	return cmd
}

func patientAddCmd(a *app) *cobra.Command {
	var (
		req          api.PatientRequest
		email, notes string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			if email != "" {
				req.Email = &email
			}
			if notes != "" {
				req.MedicalNotes = &notes
			}

			p, err := c.CreatePatient(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", p.FullName(), p.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.FirstName, "first-name", "", "first name")
	f.StringVar(&req.LastName, "last-name", "", "last name")
	f.StringVar(&req.Phone, "phone", "", "phone number")
	f.StringVar(&email, "email", "", "email address")
	f.StringVar(&req.BirthDate, "birth-date", "", "birth date, YYYY-MM-DD")
	f.StringVar(&notes, "medical-notes", "", "medical notes")
	return cmd
}
