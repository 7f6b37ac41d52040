package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jhoicas/InvoiceFlow-api/pkg/config"
	"github.com/jhoicas/InvoiceFlow-api/pkg/jwt"
)

func tokenCmd() *cobra.Command {
	var (
		userID, companyID, role string
		minutes                 int
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un JWT de acceso a la API para una empresa",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !jwt.ValidRole(role) {
				return fmt.Errorf("--role debe ser %s o %s", jwt.RoleOwner, jwt.RoleMember)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if userID == "" {
				userID = uuid.New().String()
			}
			if minutes <= 0 {
				minutes = cfg.JWT.Expiration
			}
			tok, err := jwt.Generate(cfg.JWT.Secret, userID, companyID, role, cfg.JWT.Issuer, minutes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "ID del usuario (por defecto uno aleatorio)")
	cmd.Flags().StringVar(&companyID, "company", "", "ID de la empresa")
	cmd.Flags().StringVar(&role, "role", jwt.RoleOwner, "rol: owner | member")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "vigencia en minutos (por defecto JWT_EXPIRATION_MINUTES)")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}
