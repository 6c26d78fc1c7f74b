package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/infrastructure/oauth"
	"dispatch-console/internal/infrastructure/persistence"
	"dispatch-console/internal/infrastructure/router"
	"dispatch-console/internal/interface/gmail"
	repo "dispatch-console/internal/interface/repository"
	"dispatch-console/internal/usecase"
	"dispatch-console/pkg/utils"
	"dispatch-console/templates"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newWatchCmd(appRef func() *app) *cobra.Command {
	var date, driver string
	var mailbox bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the schedule board fresh, deliver notifications and import mailed workbooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appRef()
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if a.outbox != nil {
				go a.outbox.Run(ctx)
			}
			go a.store.Poll(ctx, a.cfg.PollInterval)

			if mailbox {
				if err := a.startMailbox(ctx); err != nil {
					return err
				}
			}

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			server := &http.Server{Addr: ":" + a.cfg.MetricsPort, Handler: mux}
			go func() {
				a.log.Info("Starting metrics server", "port", a.cfg.MetricsPort)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					a.log.Error("Metrics server error", "error", err)
				}
			}()

			ticker := time.NewTicker(a.cfg.PollInterval)
			defer ticker.Stop()
			var shown time.Time
			for {
				select {
				case <-ctx.Done():
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					server.Shutdown(shutdownCtx)
					if a.outbox != nil {
						a.outbox.Drain(shutdownCtx)
					}
					a.log.Info("Console stopped")
					return nil
				case <-ticker.C:
					if updated := a.store.UpdatedAt(); updated.After(shown) {
						shown = updated
						day := date
						if day == "" {
							day = utils.TodayIn(time.Now(), a.cfg.Location())
						}
						printBoard(os.Stdout, a.store.Board(day, driver))
					}
				}
			}
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "board date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&driver, "driver", "", "only this driver's trips")
	cmd.Flags().BoolVar(&mailbox, "mailbox", false, "import booking workbooks from the Gmail inbox")
	return cmd
}

// startMailbox wires the Gmail poller to the importer
func (a *app) startMailbox(ctx context.Context) error {
	if !a.cfg.GmailEnabled() {
		return errors.New("mailbox import needs GMAIL_CLIENT_ID, GMAIL_CLIENT_SECRET and GMAIL_REFRESH_TOKEN")
	}

	mongoClient, db, err := persistence.NewMongoClient(ctx, a.cfg.MongoURI, a.cfg.MongoUser, a.cfg.MongoPassword, a.cfg.MongoDB)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func() { mongoClient.Disconnect(context.Background()) })

	mailboxRepo := repo.NewMongoMailboxRepository(db)
	subjects := router.NewSubjectRouter(a.log.With("component", "subject-router"))
	location := a.cfg.Location()
	subjects.Register(templates.NewBookingSheetHandler(a.importer, func() string {
		return utils.TomorrowIn(time.Now(), location)
	}, a.log.With("component", "booking-sheet")))

	orchestrator := usecase.NewMailboxOrchestrator(mailboxRepo, subjects, a.log.With("component", "mailbox"))
	auth := oauth.NewMailboxOAuth(a.cfg.GmailClientID, a.cfg.GmailClientSecret, a.cfg.GmailRefreshToken, "", a.log)

	service, err := gmail.NewMailboxService(ctx, auth.TokenSource(ctx), mailboxRepo, orchestrator,
		a.log.With("component", "gmail"), a.cfg.GmailPollInterval, time.Duration(a.cfg.GmailLookbackDays)*24*time.Hour)
	if err != nil {
		return err
	}
	go service.StartPolling(ctx)
	return nil
}

func newImportCmd(appRef func() *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "import <workbook>",
		Short: "Import the BOOKING sheet of a workbook for one date (default tomorrow)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appRef()
			ctx := cmd.Context()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read workbook: %w", err)
			}
			if err := a.store.Refresh(ctx); err != nil {
				a.log.Warn("Failed to load existing schedules, ID collisions checked against the registry only", "error", err)
			}

			result, err := a.importer.Import(ctx, args[0], data, date)
			if errors.Is(err, usecase.ErrNoSchedules) {
				fmt.Printf("No schedules found for %s (%d rows skipped)\n", result.TargetDate, result.Skipped)
				return nil
			}
			if err != nil {
				return err
			}

			if a.outbox != nil {
				a.outbox.Drain(ctx)
			}
			fmt.Printf("Imported %d schedules for %s (%d rows skipped)\n", len(result.Schedules), result.TargetDate, result.Skipped)
			printBoard(os.Stdout, usecase.SortByDateThenTime(result.Schedules))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "target date YYYY-MM-DD (default tomorrow)")
	return cmd
}

func newBoardCmd(appRef func() *app) *cobra.Command {
	var date, driver string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print the sorted schedule board once",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appRef()
			if err := a.store.Refresh(cmd.Context()); err != nil {
				return err
			}
			if date == "" {
				date = utils.TodayIn(time.Now(), a.cfg.Location())
			}
			fmt.Printf("%s  drivers: %s\n", utils.DisplayDate(date), strings.Join(a.store.DriversOn(date), ", "))
			printBoard(os.Stdout, a.store.Board(date, driver))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "board date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&driver, "driver", "", "only this driver's trips")
	return cmd
}

func newStatusCmd(appRef func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <transactionID> <status>",
		Short: "Set a booking's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appRef()
			if err := a.store.Refresh(cmd.Context()); err != nil {
				return err
			}
			s, err := a.service.SetStatus(cmd.Context(), args[0], entity.ParseStatus(args[1]))
			if err != nil {
				return err
			}
			printTrack(os.Stdout, s)
			return nil
		},
	}
}

func newAdvanceCmd(appRef func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <transactionID>",
		Short: "Move a booking to its next stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appRef()
			if err := a.store.Refresh(cmd.Context()); err != nil {
				return err
			}
			s, err := a.service.Advance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printTrack(os.Stdout, s)
			return nil
		},
	}
}

func newTransferCmd(appRef func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <transactionID> <driverName> <cellPhone>",
		Short: "Hand a booking to another driver",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appRef()
			if err := a.store.Refresh(cmd.Context()); err != nil {
				return err
			}
			s, err := a.service.TransferDriver(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Printf("%s now assigned to %s (%s)\n", s.TransactionID, s.Current.DriverName, s.Current.CellPhone)
			return nil
		},
	}
}

func newDeleteCmd(appRef func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transactionID>",
		Short: "Delete a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appRef()
			if err := a.service.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("%s deleted\n", args[0])
			return nil
		},
	}
}

func printBoard(w io.Writer, schedules []entity.Schedule) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTIME\tTXID\tCLIENT\tFLIGHT\tPICKUP\tDRIVER\tUNIT\tSTATUS")
	for _, s := range schedules {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Date, s.Time, s.TransactionID, s.ClientName, s.FlightNumber,
			s.Pickup, s.Current.DriverName, s.PlateNumber, s.Status)
	}
	tw.Flush()
}

func printTrack(w io.Writer, s entity.Schedule) {
	fmt.Fprintf(w, "%s  %s\n", s.TransactionID, s.Status.Label())
	for _, view := range entity.Track(s.Status) {
		fmt.Fprintf(w, "  [%-9s] %s\n", view.State, view.Label)
	}
}
