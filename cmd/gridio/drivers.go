package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/airbusgeo/gridio/internal/drivers"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func runDrivers(ctx context.Context, args []string) error {
	fs, common := newFlagSet("drivers")
	writable := fs.Bool("writable", false, "only list the drivers able to create files")
	kind := fs.String("kind", "all", "raster, vector or all")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := common.init(ctx); err != nil {
		return err
	}

	t := common.driverTable()

	var list []drivers.Driver
	switch *kind {
	case "raster":
		list = t.Raster()
	case "vector":
		list = t.Vector()
	case "all":
		list = t.All()
	default:
		return fmt.Errorf("unknown kind %q", *kind)
	}
	fmt.Fprintln(os.Stdout, driversTable(list, *writable))
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

func driversTable(list []drivers.Driver, writableOnly bool) string {
	var rows [][]string
	for _, d := range list {
		if writableOnly && !d.Writable() {
			continue
		}
		rows = append(rows, []string{d.Name, d.LongName, yesNo(d.Raster), yesNo(d.Vector), yesNo(d.Writable()), strings.Join(d.Extensions, " ")})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("NAME", "DESCRIPTION", "RASTER", "VECTOR", "WRITE", "EXTENSIONS").
		Rows(rows...).
		String()
}
