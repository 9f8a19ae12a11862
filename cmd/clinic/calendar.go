package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-calendar/internal/calendar"
)

func weekCmd(a *app) *cobra.Command {
	var (
		date      string
		offset    int
		hideEmpty bool
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the appointments of a Monday-to-Sunday week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := newRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr())
			r.showEmpty = !hideEmpty
			v, err := a.view(r)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if date != "" {
				d, err := calendar.ParseDate(date, a.loc)
				if err != nil {
					return err
				}
				if err := v.SetWeek(ctx, d); err != nil {
					return r.navigated(err)
				}
			} else if offset == 0 {
				if err := v.GoToToday(ctx); err != nil {
					return r.navigated(err)
				}
			}

			for ; offset > 0; offset-- {
				if err := v.GoToNextWeek(ctx); err != nil {
					return r.navigated(err)
				}
			}
			for ; offset < 0; offset++ {
				if err := v.GoToPreviousWeek(ctx); err != nil {
					return r.navigated(err)
				}
			}

			r.flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "any day of the week to show, YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&offset, "offset", 0, "weeks to move forward (negative: back) from --date")
	cmd.Flags().BoolVar(&hideEmpty, "hide-empty", false, "skip days without appointments")
	return cmd
}

func todayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show the current week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := newRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr())
			v, err := a.view(r)
			if err != nil {
				return err
			}
			if err := v.GoToToday(cmd.Context()); err != nil {
				return r.navigated(err)
			}
			r.flush()
			return nil
		},
	}
}

func exportCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a week as an iCalendar (.ics) document to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			ref := time.Now().In(a.loc)
			if date != "" {
				if ref, err = calendar.ParseDate(date, a.loc); err != nil {
					return err
				}
			}
			return c.WeekICS(cmd.Context(), ref, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "any day of the week to export, YYYY-MM-DD (default today)")
	return cmd
}
