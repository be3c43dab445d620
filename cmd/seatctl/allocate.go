package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/noah-isme/exam-seating-api/internal/allocator"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/internal/service"
	"github.com/noah-isme/exam-seating-api/pkg/export"
)

const (
	formatCSV  = "csv"
	formatPDF  = "pdf"
	formatJSON = "json"
)

type allocateOptions struct {
	rosters   []string
	layout    string
	seed      int64
	start     string
	end       string
	startTime string
	endTime   string
	samePlan  bool
	out       string
	format    string
	report    string
}

func newAllocateCommand() *cobra.Command {
	opts := &allocateOptions{}
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Allocate seats for one or more roster files",
		Example: "  seatctl allocate --roster cse.csv --roster ece.csv --layout hall.json \\\n" +
			"    --start 2024-05-01 --end 2024-05-03 --format pdf --out seating.pdf",
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed *int64
			if cmd.Flags().Changed("seed") {
				seed = &opts.seed
			}
			return runAllocate(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, seed)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&opts.rosters, "roster", nil, "roster CSV file (repeatable)")
	flags.StringVar(&opts.layout, "layout", "", "layout JSON file")
	flags.Int64Var(&opts.seed, "seed", 0, "random seed; drawn at random when omitted")
	flags.StringVar(&opts.start, "start", "", "first exam date (YYYY-MM-DD)")
	flags.StringVar(&opts.end, "end", "", "last exam date (YYYY-MM-DD), defaults to --start")
	flags.StringVar(&opts.startTime, "start-time", "09:00", "daily start time (HH:MM)")
	flags.StringVar(&opts.endTime, "end-time", "12:00", "daily end time (HH:MM)")
	flags.BoolVar(&opts.samePlan, "same-plan", true, "reuse the plan on every exam day")
	flags.StringVar(&opts.out, "out", "", "output file, stdout when empty")
	flags.StringVar(&opts.format, "format", formatCSV, "output format: csv, pdf or json")
	flags.StringVar(&opts.report, "report", string(models.ExportTypeRoomList), "document: room_list, attendance_sheet or summary")
	_ = cmd.MarkFlagRequired("roster")
	_ = cmd.MarkFlagRequired("layout")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func runAllocate(stdout, status io.Writer, opts *allocateOptions, seed *int64) error {
	switch opts.format {
	case formatCSV, formatPDF, formatJSON:
	default:
		return fmt.Errorf("unsupported format %q", opts.format)
	}

	sources := make([]allocator.Source, 0, len(opts.rosters))
	for _, path := range opts.rosters {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read roster: %w", err)
		}
		sources = append(sources, allocator.Source{Name: filepath.Base(path), Text: string(data)})
	}
	students, err := allocator.NewNormalizer(nil).Normalize(sources)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(opts.layout)
	if err != nil {
		return fmt.Errorf("read layout: %w", err)
	}
	var layout models.Layout
	if err := json.Unmarshal(raw, &layout); err != nil {
		return fmt.Errorf("parse layout %s: %w", opts.layout, err)
	}

	end := opts.end
	if end == "" {
		end = opts.start
	}
	schedule := models.ExamSchedule{
		StartDate:               opts.start,
		EndDate:                 end,
		DailyStartTime:          opts.startTime,
		DailyEndTime:            opts.endTime,
		ReuseSamePlanAcrossDays: opts.samePlan,
	}

	result, err := allocator.Run(allocator.Input{Students: students, Layout: layout, Schedule: schedule, Seed: seed})
	if err != nil {
		return err
	}

	plan := &models.SeatingPlan{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Seed:        result.Seed,
		Assignments: result.Report.Assignments(),
		Schedule:    result.Report.Schedule(),
		Summary:     result.Report.Summary(),
		Stats:       result.Stats,
	}

	payload, err := render(plan, opts)
	if err != nil {
		return err
	}

	if opts.out == "" {
		if _, err := stdout.Write(payload); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(opts.out, payload, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(status, "wrote %s\n", opts.out)
	}

	fmt.Fprintf(status, "students=%d rooms=%d seats=%d empty=%d violations=%d seed=%d\n",
		plan.Stats.Students, plan.Stats.Rooms, plan.Stats.Seats, plan.Stats.EmptySeats,
		plan.Stats.AdjacencyViolations, plan.Seed)
	return nil
}

func render(plan *models.SeatingPlan, opts *allocateOptions) ([]byte, error) {
	if opts.format == formatJSON {
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}

	doc, err := service.BuildDocument(plan, models.ExportType(opts.report))
	if err != nil {
		return nil, err
	}
	if opts.format == formatPDF {
		return export.NewPDFExporter().Render(doc)
	}
	return export.NewCSVExporter().Render(doc)
}
