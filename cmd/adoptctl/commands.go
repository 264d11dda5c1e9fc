package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	adoptionpostgres "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/persistence/postgres"
	adoptionapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	platformevents "github.com/Apurer/pet-adoption-api/internal/platform/events"
	"github.com/Apurer/pet-adoption-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
	"github.com/Apurer/pet-adoption-api/internal/platform/sqlite"
	"github.com/Apurer/pet-adoption-api/internal/shared/actor"
)

var operator = actor.Actor{UserID: "adoptctl", Role: actor.RoleAdmin}

type storeOptions struct {
	dsn        string
	sqlitePath string
}

// open connects to the configured store and builds the adoption service on it.
func (o *storeOptions) open(ctx context.Context) (*adoptionapp.Service, func(), error) {
	var (
		db  *gorm.DB
		err error
	)
	switch {
	case o.sqlitePath != "":
		db, err = sqlite.Open(o.sqlitePath)
	case o.dsn != "":
		db, err = platformpostgres.Connect(ctx, o.dsn)
	default:
		return nil, nil, fmt.Errorf("no store configured\nHint: pass --dsn, set POSTGRES_DSN, or use --sqlite FILE")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := migrations.Run(db); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("migrate store: %w", err)
	}
	logger := platformobservability.Nop(os.Stderr).Logger
	service := adoptionapp.NewService(
		adoptionpostgres.NewUnitOfWork(db),
		adoptionapp.WithPublisher(platformevents.NewLogPublisher(logger)),
		adoptionapp.WithLogger(logger),
	)
	return service, cleanup, nil
}

func reconcileCmd(opts *storeOptions) *cobra.Command {
	var petID string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Re-derive pet statuses from their adoption applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, cleanup, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			changes, err := service.Reconcile(cmd.Context(), adoptiontypes.ReconcileInput{Actor: operator, PetID: petID})
			for _, change := range changes {
				line := fmt.Sprintf("%s: %s -> %s", change.PetID, change.From, change.To)
				if change.AdoptedBy != "" {
					line += fmt.Sprintf(" (adopted by %s)", change.AdoptedBy)
				}
				fmt.Println(color.New(color.FgYellow).Sprint("repaired ") + line)
			}
			if err != nil {
				return fmt.Errorf("reconcile: %w", err)
			}
			if len(changes) == 0 {
				fmt.Println(color.New(color.FgGreen).Sprint("✓") + " every pet status matches its applications")
				return nil
			}
			fmt.Printf("%d pet(s) repaired\n", len(changes))
			return nil
		},
	}
	cmd.Flags().StringVar(&petID, "pet", "", "reconcile a single pet")
	return cmd
}

func manualStatusCmd(opts *storeOptions, use, short, status string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " PET_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cleanup, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			pet, err := service.SetManualStatus(cmd.Context(), adoptiontypes.ManualStatusInput{
				Actor:  operator,
				PetID:  args[0],
				Status: status,
			})
			if err != nil {
				return fmt.Errorf("%s %s: %w", use, args[0], err)
			}
			fmt.Printf("✓ %s is now %s\n", pet.Pet.ID, statusLabel(pet.Pet.Status))
			return nil
		},
	}
}

func adoptionsCmd(opts *storeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adoptions",
		Short: "Inspect adoption applications",
	}
	var status, petID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List adoption applications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, cleanup, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			adoptions, err := service.List(cmd.Context(), adoptiontypes.ListAdoptionsInput{Actor: operator, Status: status, PetID: petID})
			if err != nil {
				return fmt.Errorf("list adoptions: %w", err)
			}
			if len(adoptions) == 0 {
				fmt.Println("No adoption applications found.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPET\tAPPLICANT\tSTATUS\tAPPLIED")
			for _, a := range adoptions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					a.Adoption.ID,
					a.Adoption.PetID,
					a.Adoption.ApplicantID,
					adoptionLabel(a.Adoption.Status),
					a.Adoption.ApplicationDate.Format(time.DateTime),
				)
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&status, "status", "", "filter by status (Pending, Approved, Rejected, Cancelled)")
	list.Flags().StringVar(&petID, "pet", "", "filter by pet")
	cmd.AddCommand(list)
	return cmd
}

func statusLabel(s petdomain.Status) string {
	switch s {
	case petdomain.StatusAvailable:
		return color.New(color.FgGreen).Sprint(s)
	case petdomain.StatusPending:
		return color.New(color.FgYellow).Sprint(s)
	case petdomain.StatusAdopted:
		return color.New(color.FgBlue).Sprint(s)
	}
	return color.New(color.FgRed).Sprint(s)
}

func adoptionLabel(s domain.Status) string {
	switch s {
	case domain.StatusPending:
		return color.New(color.FgYellow).Sprint(s)
	case domain.StatusApproved:
		return color.New(color.FgGreen).Sprint(s)
	case domain.StatusRejected:
		return color.New(color.FgRed).Sprint(s)
	}
	return color.New(color.FgHiBlack).Sprint(s)
}
