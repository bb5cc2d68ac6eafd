package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/iho/ledgerbook/internal/adapter/http/dto"
	"github.com/iho/ledgerbook/internal/adapter/statement"
	"github.com/iho/ledgerbook/internal/domain"
	"github.com/iho/ledgerbook/internal/infrastructure/auth"
	"github.com/iho/ledgerbook/internal/usecase"
)

// filterFlags are the query flags shared by ledger and transaction listings.
type filterFlags struct {
	search   string
	from     string
	to       string
	members  string
	status   string
	min      string
	max      string
	lettered string
	sort     string
	dir      string
	limit    int
	offset   int

	memberKey string
}

func (f *filterFlags) bind(cmd *cobra.Command, memberKey, memberHelp string) {
	f.memberKey = memberKey

	flags := cmd.Flags()
	flags.StringVarP(&f.search, "query", "q", "", "Case-insensitive text search")
	flags.StringVar(&f.from, "from", "", "First day, YYYY-MM-DD")
	flags.StringVar(&f.to, "to", "", "Last day, YYYY-MM-DD")
	flags.StringVar(&f.members, memberKey, "", memberHelp)
	flags.StringVar(&f.status, "status", "", "Comma-separated statuses (reconciled, pending, unreconciled)")
	flags.StringVar(&f.min, "min", "", "Minimum absolute amount")
	flags.StringVar(&f.max, "max", "", "Maximum absolute amount")
	flags.StringVar(&f.lettered, "lettered", "", "true for lettered lines only, false for open lines only")
	flags.StringVar(&f.sort, "sort", "", "Sort field")
	flags.StringVar(&f.dir, "dir", "", "Sort direction (asc, desc)")
	flags.IntVar(&f.limit, "limit", 0, "Page size")
	flags.IntVar(&f.offset, "offset", 0, "Page offset")
}

func (f *filterFlags) values() url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}

	set("q", f.search)
	set("from", f.from)
	set("to", f.to)
	set(f.memberKey, f.members)
	set("status", f.status)
	set("min", f.min)
	set("max", f.max)
	set("lettered", f.lettered)
	set("sort", f.sort)
	set("dir", f.dir)
	if f.limit > 0 {
		q.Set("limit", strconv.Itoa(f.limit))
	}
	if f.offset > 0 {
		q.Set("offset", strconv.Itoa(f.offset))
	}
	return q
}

func ledgerCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "General ledger operations",
	}

	var filters filterFlags
	showCmd := &cobra.Command{
		Use:   "show <account>",
		Short: "Show an account ledger with progressive balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.LedgerResponse
			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/ledger"
			if err := opts.client().do(cmd.Context(), http.MethodGet, path, filters.values(), nil, nil, &resp); err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printLedger(cmd.OutOrStdout(), &resp)
			return nil
		},
	}
	filters.bind(showCmd, "journal", "Comma-separated journal codes")

	pieceCmd := &cobra.Command{
		Use:   "piece <piece>",
		Short: "List the lines of a journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.PieceResponse
			path := "/api/v1/pieces/" + url.PathEscape(args[0]) + "/entries"
			if err := opts.client().do(cmd.Context(), http.MethodGet, path, nil, nil, nil, &resp); err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printEntries(cmd.OutOrStdout(), resp.Entries, false)
			return nil
		},
	}

	var letterKey string
	letterCmd := &cobra.Command{
		Use:   "letter <account> <entry-id> <entry-id>...",
		Short: "Match balanced lines of an account under a new lettrage code",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := letterKey
			if key == "" {
				key = ulid.Make().String()
			}

			var resp dto.LettrageResponse
			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/lettrages"
			body := dto.ApplyLettrageRequest{EntryIDs: args[1:]}
			headers := map[string]string{"Idempotency-Key": key}
			if err := opts.client().do(cmd.Context(), http.MethodPost, path, nil, body, headers, &resp); err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Lettered %d lines of %s as %s (total %s)\n",
				len(resp.EntryIDs), resp.AccountCode, resp.Code, resp.Total)
			return nil
		},
	}
	letterCmd.Flags().StringVar(&letterKey, "idempotency-key", "", "Idempotency key (generated when empty)")

	unletterCmd := &cobra.Command{
		Use:   "unletter <account> <code>",
		Short: "Remove a lettrage code from an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/lettrages/" + url.PathEscape(args[1])
			if err := opts.client().do(cmd.Context(), http.MethodDelete, path, nil, nil, nil, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed lettrage %s from %s\n", args[1], args[0])
			return nil
		},
	}

	cmd.AddCommand(showCmd, pieceCmd, letterCmd, unletterCmd)
	return cmd
}

func transactionsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Bank transaction operations",
	}

	var filters filterFlags
	listCmd := &cobra.Command{
		Use:   "list <bank-account>",
		Short: "List the transactions of a bank account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.TransactionListResponse
			path := "/api/v1/bank-accounts/" + url.PathEscape(args[0]) + "/transactions"
			if err := opts.client().do(cmd.Context(), http.MethodGet, path, filters.values(), nil, nil, &resp); err != nil {
				return err
			}
			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printTransactions(cmd.OutOrStdout(), &resp)
			return nil
		},
	}
	filters.bind(listCmd, "category", "Comma-separated categories")

	cmd.AddCommand(listCmd)
	return cmd
}

func statementCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statement",
		Short: "Bank statement operations",
	}

	var (
		batchSize int
		keyPrefix string
	)
	importCmd := &cobra.Command{
		Use:   "import <bank-account> <file.csv>",
		Short: "Import a CSV bank statement",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if batchSize <= 0 || batchSize > usecase.MaxStatementLines {
				return fmt.Errorf("batch size must be between 1 and %d", usecase.MaxStatementLines)
			}

			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			transactions, err := statement.ReadCSV(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}
			if len(transactions) == 0 {
				return fmt.Errorf("%s: no statement lines", args[1])
			}
			// Numbered over the whole file so batches agree on repeated lines.
			domain.NumberOccurrences(transactions)

			if keyPrefix == "" {
				keyPrefix = ulid.Make().String()
			}

			client := opts.client()
			path := "/api/v1/bank-accounts/" + url.PathEscape(args[0]) + "/statements"

			var received int
			var imported int64
			for start, batch := 0, 0; start < len(transactions); start, batch = start+batchSize, batch+1 {
				end := min(start+batchSize, len(transactions))

				req := dto.ImportStatementRequest{Transactions: make([]dto.TransactionRequest, 0, end-start)}
				for _, t := range transactions[start:end] {
					req.Transactions = append(req.Transactions, dto.TransactionRequestFromDomain(t))
				}

				var resp dto.ImportResponse
				headers := map[string]string{"Idempotency-Key": fmt.Sprintf("%s-%d", keyPrefix, batch)}
				if err := client.do(cmd.Context(), http.MethodPost, path, nil, req, headers, &resp); err != nil {
					return fmt.Errorf("lines %d-%d: %w", start+1, end, err)
				}
				received += resp.Received
				imported += resp.Imported
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d new lines out of %d into %s\n", imported, received, args[0])
			return nil
		},
	}
	importCmd.Flags().IntVar(&batchSize, "batch-size", 1000, "Lines per request")
	importCmd.Flags().StringVar(&keyPrefix, "idempotency-key", "", "Idempotency key prefix (generated when empty)")

	cmd.AddCommand(importCmd)
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		secret  string
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("a signing secret is required (--secret or JWT_SECRET)")
			}
			r, err := auth.ParseRole(role)
			if err != nil {
				return err
			}

			token, err := auth.NewJWTManager(secret).Generate(subject, r, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	cmd.Flags().StringVar(&subject, "subject", "", "Token subject")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleViewer), "Role (accountant, viewer)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func printLedger(w io.Writer, l *dto.LedgerResponse) {
	fmt.Fprintf(w, "Account %s  (%d lines, showing %d from %d)\n", l.AccountCode, l.Total, len(l.Entries), l.Offset)
	printEntries(w, l.Entries, true)
	fmt.Fprintf(w, "Debit %s  Credit %s  Balance %s  Closing %s\n",
		l.Summary.TotalDebit, l.Summary.TotalCredit, l.Summary.Balance, l.ClosingBalance)
}

func printEntries(w io.Writer, entries []dto.EntryResponse, withBalance bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "DATE\tACCOUNT\tJOURNAL\tPIECE\tLABEL\tDEBIT\tCREDIT\tLET"
	if withBalance {
		header += "\tBALANCE"
	}
	fmt.Fprintln(tw, header)

	for _, e := range entries {
		row := []string{e.Date, e.AccountCode, e.JournalCode, e.Piece, truncate(e.Label, 32),
			amountCell(e.Debit.String()), amountCell(e.Credit.String()), e.Lettrage}
		if withBalance {
			row = append(row, e.Balance.String())
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

func printTransactions(w io.Writer, l *dto.TransactionListResponse) {
	fmt.Fprintf(w, "Bank account %s  (%d transactions, showing %d from %d)\n", l.BankAccount, l.Total, len(l.Transactions), l.Offset)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tCATEGORY\tAMOUNT\tSTATUS\tLET")
	for _, t := range l.Transactions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Date, truncate(t.Description, 40), t.Category, t.Amount, t.Status, t.Lettrage)
	}
	tw.Flush()
}

func amountCell(s string) string {
	if s == "0" {
		return ""
	}
	return s
}
