package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/crimewatch/internal/access"
	"github.com/magabrotheeeer/crimewatch/internal/lib/month"
	"github.com/magabrotheeeer/crimewatch/internal/models"
)

const (
	actorFlag  = "actor"
	configFlag = "config"
)

var actorFlags = map[string]cobraflags.Flag{
	actorFlag: &cobraflags.StringFlag{
		Name:  actorFlag,
		Value: "",
		Usage: "uid of the super admin performing the change (required)",
	},
}

var rootFlags = map[string]cobraflags.Flag{
	configFlag: &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "Path to config file (defaults to CONFIG_PATH)",
	},
}

func configPath() string {
	if p := rootFlags[configFlag].GetString(); p != "" {
		return p
	}
	return os.Getenv("CONFIG_PATH")
}

func newRootCommand(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "accessctl",
		Short:         "Manage dashboard access records",
		SilenceUsage: true,
	}
	cobraflags.RegisterMap(root, rootFlags)

	premium := &cobra.Command{
		Use:   "premium [grant|revoke]",
		Short: "Grant or revoke premium access",
	}
	premium.AddCommand(
		newChangeCommand(open, "grant <uid>", "Grant premium access to a user",
			func(ops AccessOps, cmd *cobra.Command, actor models.Principal, uid string) (*models.User, error) {
				return ops.GrantPremium(cmd.Context(), actor, uid)
			}),
		newChangeCommand(open, "revoke <uid>", "Revoke premium access from a user",
			func(ops AccessOps, cmd *cobra.Command, actor models.Principal, uid string) (*models.User, error) {
				return ops.RevokePremium(cmd.Context(), actor, uid)
			}),
	)

	accessCmd := &cobra.Command{
		Use:   "access [enable|disable]",
		Short: "Enable or disable dashboard access for an admin",
	}
	accessCmd.AddCommand(
		newChangeCommand(open, "enable <uid>", "Enable dashboard access",
			func(ops AccessOps, cmd *cobra.Command, actor models.Principal, uid string) (*models.User, error) {
				return ops.SetAccessEnabled(cmd.Context(), actor, uid, true)
			}),
		newChangeCommand(open, "disable <uid>", "Disable dashboard access",
			func(ops AccessOps, cmd *cobra.Command, actor models.Principal, uid string) (*models.User, error) {
				return ops.SetAccessEnabled(cmd.Context(), actor, uid, false)
			}),
	)

	user := &cobra.Command{
		Use:   "user",
		Short: "Inspect user records",
	}
	user.AddCommand(&cobra.Command{
		Use:   "show <uid>",
		Short: "Print the access record of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			u, err := ops.User(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printUser(cmd, u)
		},
	})

	root.AddCommand(premium, accessCmd, user)
	return root
}

type changeFunc func(ops AccessOps, cmd *cobra.Command, actor models.Principal, uid string) (*models.User, error)

// newChangeCommand строит подкоманду привилегированного изменения.
// Вызывающий берётся из сохранённой записи, а не из аргументов.
func newChangeCommand(open Opener, use, short string, change changeFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actorUID := actorFlags[actorFlag].GetString()
			if actorUID == "" {
				return fmt.Errorf("--%s is required", actorFlag)
			}

			ops, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			rec, err := ops.User(cmd.Context(), actorUID)
			if err != nil {
				return fmt.Errorf("actor %s: %w", actorUID, err)
			}
			actor := models.Principal{UID: rec.UID, Email: rec.Email, Role: rec.Role, DisplayName: rec.DisplayName}

			u, err := change(ops, cmd, actor, args[0])
			if err != nil {
				return err
			}
			return printUser(cmd, u)
		},
	}
	cobraflags.RegisterMap(cmd, actorFlags)
	return cmd
}

// userView дополняет запись текущим решением о доступе и остатком подписки.
type userView struct {
	*models.User
	Access                 access.Result `json:"access"`
	SubscriptionMonthsLeft *int          `json:"subscription_months_left,omitempty"`
}

func printUser(cmd *cobra.Command, u *models.User) error {
	now := time.Now().UTC()
	view := userView{User: u, Access: access.Evaluate(u, now)}
	if u.SubscriptionExpiryDate != nil {
		left := month.MonthsBetween(now, *u.SubscriptionExpiryDate)
		view.SubscriptionMonthsLeft = &left
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}
