package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/billing"
	"github.com/jhoicas/InvoiceFlow-api/internal/application/dto"
)

func companyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Alta y listado de empresas (tenants)",
	}
	cmd.AddCommand(companyCreateCmd())
	cmd.AddCommand(companyListCmd())
	return cmd
}

func companyCreateCmd() *cobra.Command {
	var in dto.CreateCompanyRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Registra una empresa e imprime su ID",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cmd, true)
			if err != nil {
				return err
			}
			defer e.close()
			out, err := billing.NewCompanyUseCase(e.repos.Companies).Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "nombre de la empresa")
	cmd.Flags().StringVar(&in.Email, "email", "", "email de facturación")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "teléfono")
	cmd.Flags().StringVar(&in.Address, "address", "", "dirección")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func companyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lista las empresas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()
			list, err := billing.NewCompanyUseCase(e.repos.Companies).List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNOMBRE\tEMAIL")
			for _, c := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, c.Email)
			}
			return w.Flush()
		},
	}
}
