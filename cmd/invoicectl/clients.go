package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/InvoiceFlow-api/internal/application/billing"
	"github.com/jhoicas/InvoiceFlow-api/internal/application/dto"
	"github.com/jhoicas/InvoiceFlow-api/internal/domain/repository"
)

func clientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Administración de clientes",
	}
	cmd.AddCommand(clientsImportCmd())
	return cmd
}

func clientsImportCmd() *cobra.Command {
	var file, companyID, encoding string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Importa clientes desde un CSV (name,email,phone,company,address,notes)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("abrir CSV: %w", err)
			}
			defer f.Close()

			rows, err := readClientsCSV(f, encoding)
			if err != nil {
				return err
			}

			e, err := openEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.close()

			uc := billing.NewClientUseCase(e.repos.Clients, e.repos.Invoices,
				billing.WithLogger(e.log.Component("billing")))
			res, err := importClients(cmd.Context(), uc, e.repos.Clients, companyID, rows)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d creados, %d existentes, %d inválidos\n", res.created, res.existing, len(res.invalid))
			for _, msg := range res.invalid {
				fmt.Fprintln(cmd.ErrOrStderr(), "  "+msg)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "ruta del CSV")
	cmd.Flags().StringVar(&companyID, "company", "", "empresa destino")
	cmd.Flags().StringVar(&encoding, "encoding", "utf8", "utf8 | latin1 | windows1252")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}

// decoderFor envuelve r con el decodificador del charset indicado.
func decoderFor(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", "utf8", "utf-8":
		return r, nil
	case "latin1", "iso-8859-1", "iso8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows1252", "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, fmt.Errorf("codificación %q no soportada", encoding)
}

// readClientsCSV lee el CSV con encabezado. Las columnas se ubican por nombre; solo name es obligatoria.
func readClientsCSV(r io.Reader, encoding string) ([]dto.CreateClientRequest, error) {
	in, err := decoderFor(r, encoding)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := idx["name"]; !ok {
		return nil, errors.New("el CSV no tiene columna name")
	}

	var rows []dto.CreateClientRequest
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("leer CSV: %w", err)
		}
		field := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		rows = append(rows, dto.CreateClientRequest{
			Name:    field("name"),
			Email:   field("email"),
			Phone:   field("phone"),
			Company: field("company"),
			Address: field("address"),
			Notes:   field("notes"),
		})
	}
	return rows, nil
}

type importResult struct {
	created  int
	existing int
	invalid  []string
}

// importClients crea los clientes que no existan por nombre. Las filas inválidas se reportan y se omiten.
func importClients(ctx context.Context, uc *billing.ClientUseCase, clients repository.ClientRepository, companyID string, rows []dto.CreateClientRequest) (importResult, error) {
	var res importResult
	for i, row := range rows {
		line := i + 2
		if row.Name == "" {
			res.invalid = append(res.invalid, fmt.Sprintf("línea %d: nombre vacío", line))
			continue
		}
		found, err := clients.GetByName(ctx, companyID, row.Name)
		if err != nil {
			return res, err
		}
		if found != nil {
			res.existing++
			continue
		}
		if _, err := uc.Create(ctx, companyID, row); err != nil {
			res.invalid = append(res.invalid, fmt.Sprintf("línea %d: %v", line, err))
			continue
		}
		res.created++
	}
	return res, nil
}
