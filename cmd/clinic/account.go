package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-calendar/internal/auth"
)

func credentialFlags(cmd *cobra.Command, in *auth.Credentials) {
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
}

func signupCmd(a *app) *cobra.Command {
	var in auth.Credentials

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a staff account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.client().SignUp(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "account %s created, run 'clinic login' next\n", u.Email)
			return nil
		},
	}
	credentialFlags(cmd, &in)
	return cmd
}

func loginCmd(a *app) *cobra.Command {
	var in auth.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print a session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.client().Login(cmd.Context(), in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "export CLINIC_TOKEN=%s\n", sess.Token)
			fmt.Fprintf(out, "# valid until %s\n", sess.ExpiresAt.In(a.loc).Format(time.RFC1123))
			return nil
		},
	}
	credentialFlags(cmd, &in)
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the current session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			if err := c.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func statsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			s, err := c.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "patients:               %d\n", s.PatientsCount)
			fmt.Fprintf(out, "appointments today:     %d\n", s.AppointmentsToday)
			fmt.Fprintf(out, "upcoming (next 6 days): %d\n", s.UpcomingAppointments)
			return nil
		},
	}
}
