package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/ledgerbot/internal/blob"
	"github.com/dvloznov/ledgerbot/internal/config"
	"github.com/dvloznov/ledgerbot/internal/dates"
	"github.com/dvloznov/ledgerbot/internal/domain"
	"github.com/dvloznov/ledgerbot/internal/intake"
	"github.com/dvloznov/ledgerbot/internal/ledger"
	"github.com/dvloznov/ledgerbot/internal/logger"
	"github.com/dvloznov/ledgerbot/internal/money"
	"github.com/dvloznov/ledgerbot/internal/oracle"
	"github.com/dvloznov/ledgerbot/internal/sheets"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "submit":
		runSubmit(log)
	case "text":
		runText(log)
	case "analyze":
		runAnalyze(log)
	case "balance":
		runBalance(log)
	case "report":
		runReport(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Ledger Bot CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  submit    Record an entry from an explicit kind and amount text")
	fmt.Println("  text      Record an entry extracted from a natural-language message")
	fmt.Println("  analyze   Record an entry extracted from a receipt image")
	fmt.Println("  balance   Show all-time and current-month totals")
	fmt.Println("  report    Show one month's totals")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func buildService(ctx context.Context, log zerolog.Logger) *intake.Service {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	resolver, err := dates.NewResolver(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load timezone")
	}

	store, err := sheets.NewStore(ctx, cfg.SpreadsheetID, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create spreadsheet store")
	}

	oracleClient, err := oracle.NewClient(ctx, cfg.OracleModel, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create oracle client")
	}

	var blobs intake.BlobStore
	if cfg.GCSBucket != "" {
		bs, err := blob.NewStore(ctx, cfg.GCSBucket, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create blob store")
		}
		blobs = bs
	}

	partitions := ledger.NewPartitioner(store, log)
	return intake.NewService(
		oracleClient,
		blobs,
		ledger.NewWriter(store, partitions, time.Now, log),
		ledger.NewAggregator(store, resolver, log),
		ledger.NewReporter(store, log),
		ledger.NewRegistry(store, time.Now, log),
		resolver,
		log,
	)
}

func runSubmit(log zerolog.Logger) {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	user := fs.String("user", "", "User ID recording the entry")
	label := fs.String("label", "", "Display name for the user")
	kind := fs.String("kind", "", "Entry kind: inflow or outflow")
	text := fs.String("text", "", "Amount and description, e.g. \"35,90 frete sedex\"")
	fs.Parse(os.Args[2:])

	if *user == "" || *kind == "" || *text == "" {
		fmt.Fprintln(os.Stderr, "submit requires -user, -kind and -text")
		fs.Usage()
		os.Exit(1)
	}

	k, ok := domain.ParseKind(*kind)
	if !ok {
		log.Fatal().Str("kind", *kind).Msg("Kind must be inflow or outflow")
	}

	ctx := context.Background()
	svc := buildService(ctx, log)

	conf, err := svc.SubmitDirect(ctx, intake.Submission{UserID: *user, UserLabel: *label}, k, *text)
	if err != nil {
		log.Fatal().Err(err).Msg("Submission failed")
	}

	printConfirmation(conf)
}

func runText(log zerolog.Logger) {
	fs := flag.NewFlagSet("text", flag.ExitOnError)
	user := fs.String("user", "", "User ID recording the entry")
	label := fs.String("label", "", "Display name for the user")
	message := fs.String("message", "", "Natural-language message to extract from")
	fs.Parse(os.Args[2:])

	if *user == "" || *message == "" {
		fmt.Fprintln(os.Stderr, "text requires -user and -message")
		fs.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	svc := buildService(ctx, log)

	conf, err := svc.SubmitText(ctx, intake.Submission{UserID: *user, UserLabel: *label}, *message)
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}

	printConfirmation(conf)
}

func runAnalyze(log zerolog.Logger) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	user := fs.String("user", "", "User ID recording the entry")
	label := fs.String("label", "", "Display name for the user")
	file := fs.String("file", "", "Path to the receipt image")
	fs.Parse(os.Args[2:])

	if *user == "" || *file == "" {
		fmt.Fprintln(os.Stderr, "analyze requires -user and -file")
		fs.Usage()
		os.Exit(1)
	}

	image, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to read image")
	}

	mimeType := mime.TypeByExtension(filepath.Ext(*file))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	ctx := context.Background()
	svc := buildService(ctx, log)

	conf, analysis, err := svc.SubmitVisual(ctx, intake.Submission{UserID: *user, UserLabel: *label},
		image, mimeType, filepath.Base(*file))
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	if conf == nil {
		fmt.Println("No record could be extracted from the image. Analysis:")
		fmt.Println(analysis)
		return
	}

	printConfirmation(*conf)
	if conf.AttachmentLink != "" {
		fmt.Printf("Attachment: %s\n", conf.AttachmentLink)
	}
}

func runBalance(log zerolog.Logger) {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	user := fs.String("user", "", "User ID to query")
	fs.Parse(os.Args[2:])

	if *user == "" {
		fmt.Fprintln(os.Stderr, "balance requires -user")
		fs.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	svc := buildService(ctx, log)

	bal, err := svc.Balance(ctx, *user)
	if err != nil {
		log.Fatal().Err(err).Msg("Balance scan failed")
	}

	fmt.Printf("Total balance:          %s\n", money.FormatBRL(bal.TotalBalance))
	fmt.Printf("Current month (%s): %s\n", bal.CurrentMonth, money.FormatBRL(bal.CurrentMonthBalance))
	fmt.Printf("All-time inflows:       %s\n", money.FormatBRL(bal.TotalInflows))
	fmt.Printf("All-time outflows:      %s\n", money.FormatBRL(bal.TotalOutflows))
}

func runReport(log zerolog.Logger) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	user := fs.String("user", "", "User ID to query")
	month := fs.String("month", "", "Month to report, YYYY-MM or MM/YYYY (default: current)")
	fs.Parse(os.Args[2:])

	if *user == "" {
		fmt.Fprintln(os.Stderr, "report requires -user")
		fs.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	svc := buildService(ctx, log)

	report, err := svc.Report(ctx, *user, *month)
	if err != nil {
		log.Fatal().Err(err).Msg("Report failed")
	}

	fmt.Printf("Report for %s (%d entries)\n", report.Month, report.EntryCount)
	fmt.Printf("  Inflows:  %s\n", money.FormatBRL(report.TotalInflows))
	fmt.Printf("  Outflows: %s\n", money.FormatBRL(report.TotalOutflows))
	fmt.Printf("  Net:      %s\n", money.FormatBRL(report.NetBalance))
}

func printConfirmation(conf intake.Confirmation) {
	fmt.Printf("Recorded %s of %s (%s) on %s in partition %s\n",
		conf.Record.Kind,
		money.FormatBRL(conf.Record.Amount),
		conf.Record.Description,
		conf.Date,
		conf.Partition)
}
