package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"

	"crewtrack.in/crewtrack/core"
	"crewtrack.in/crewtrack/model"
	"crewtrack.in/crewtrack/utils"
)

// Exports attendance records to a spreadsheet for reconciliation. Reads only;
// the sync protocol is not involved.
func main() {
	date := flag.String("date", "", "filter by date (yyyy-MM-dd), empty for all")
	out := flag.String("out", "attendance-"+utils.Today()+".xlsx", "output file")
	flag.Parse()

	_ = godotenv.Load()

	dsn := os.Getenv("DSN")
	if dsn == "" {
		log.Fatal("DSN is not set")
	}

	dm, err := core.New(dsn, 2, core.LogLevelSilent)
	if err != nil {
		log.Fatal(err)
	}
	defer dm.Close()

	store := core.NewAttendanceStore(core.NewGormAttendanceRepository(dm))
	records, err := store.FindAll(context.Background(), core.AttendanceFilter{Date: *date, Limit: 100000})
	if err != nil {
		log.Fatal(err)
	}

	if err := writeWorkbook(*out, records); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %d records to %s\n", len(records), *out)
}

func writeWorkbook(path string, records []model.AttendanceRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Attendance"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headers := []string{"Employee", "Date", "Status", "Check-in", "Photo", "Remarks", "Overtime", "Locked"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for row, rec := range records {
		checkIn := ""
		if rec.CheckInTime != nil {
			checkIn = rec.CheckInTime.Format("15:04")
		}
		photo := ""
		if rec.PhotoReference != nil {
			photo = *rec.PhotoReference
		}
		values := []interface{}{rec.EmployeeID, rec.Date, string(rec.Status), checkIn, photo, rec.Remarks, rec.OvertimeHours, rec.IsLocked}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := writeSummarySheet(f, records); err != nil {
		return err
	}

	return f.SaveAs(path)
}

// writeSummarySheet adds per-day headcounts so reconciliation does not need
// pivot tables.
func writeSummarySheet(f *excelize.File, records []model.AttendanceRecord) error {
	sheet := "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Date", "Total", "Present", "Absent"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	byDate := utils.GroupBy(records, func(r model.AttendanceRecord) string { return r.Date })
	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for row, date := range dates {
		day := byDate[date]
		present := utils.Filter(day, func(r model.AttendanceRecord) bool { return r.Status == model.StatusPresent })
		absent := utils.Filter(day, func(r model.AttendanceRecord) bool { return r.Status == model.StatusAbsent })

		values := []interface{}{date, len(day), len(present), len(absent)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return nil
}
