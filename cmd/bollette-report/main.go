package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"bollette/internal/core"
	"bollette/internal/household/memory"
	"bollette/internal/services"
)

func main() {
	var householdFile string

	householdFlag := &cli.StringFlag{
		Name:        "household",
		Aliases:     []string{"H"},
		Value:       "./household.toml",
		Usage:       "Path to the household description file",
		Destination: &householdFile,
	}

	app := &cli.App{
		Name:  "bollette-report",
		Usage: "Compute utility cost statements for a shared household",
		Commands: []*cli.Command{
			{
				Name:      "statement",
				Aliases:   []string{"s"},
				Usage:     "Print the statement for a date window",
				UsageText: "bollette-report statement --from YYYY-MM-DD --to YYYY-MM-DD",
				Flags: []cli.Flag{
					householdFlag,
					&cli.StringFlag{
						Name:     "from",
						Usage:    "Window start (inclusive)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "to",
						Usage:    "Window end (inclusive)",
						Required: true,
					},
				},
				Action: func(cCtx *cli.Context) error {
					return printStatement(householdFile, cCtx.String("from"), cCtx.String("to"))
				},
			},
			{
				Name:      "share",
				Usage:     "Split a daily cost across occupants with a sharing strategy",
				UsageText: "bollette-report share --cost AMOUNT --strategy per_person|per_area|per_room",
				Flags: []cli.Flag{
					householdFlag,
					&cli.StringFlag{
						Name:     "cost",
						Usage:    "Daily cost to split (decimal comma or dot)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "strategy",
						Value: string(core.PerPerson),
						Usage: "Sharing strategy",
					},
				},
				Action: func(cCtx *cli.Context) error {
					return printShares(householdFile, cCtx.String("cost"), cCtx.String("strategy"))
				},
			},
			{
				Name:      "validate",
				Aliases:   []string{"v"},
				Usage:     "Check the household file and, optionally, utility coverage of a window",
				UsageText: "bollette-report validate [--from YYYY-MM-DD --to YYYY-MM-DD]",
				Flags: []cli.Flag{
					householdFlag,
					&cli.StringFlag{Name: "from", Usage: "Window start (inclusive)"},
					&cli.StringFlag{Name: "to", Usage: "Window end (inclusive)"},
				},
				Action: func(cCtx *cli.Context) error {
					return validate(householdFile, cCtx.String("from"), cCtx.String("to"))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadProperty(path string) (*core.Property, error) {
	store, err := memory.NewFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load household file: %w", err)
	}
	return store.LoadProperty(context.Background())
}

func parseWindow(fromStr, toStr string) (core.Date, core.Date, error) {
	from, err := core.ParseDate(fromStr)
	if err != nil {
		return core.Date{}, core.Date{}, fmt.Errorf("invalid --from date: %w", err)
	}
	to, err := core.ParseDate(toStr)
	if err != nil {
		return core.Date{}, core.Date{}, fmt.Errorf("invalid --to date: %w", err)
	}
	return from, to, nil
}

func printStatement(path, fromStr, toStr string) error {
	from, to, err := parseWindow(fromStr, toStr)
	if err != nil {
		return err
	}

	prop, err := loadProperty(path)
	if err != nil {
		return err
	}

	st, err := services.BuildStatement(prop, from, to)
	if err != nil {
		return err
	}

	fmt.Printf("Statement %s to %s\n\n", st.From, st.To)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OCCUPANT\tOWED\tPAID\tBALANCE")
	for _, line := range st.Lines {
		fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\n",
			line.Name, line.Surname,
			core.FormatEuros(line.Owed),
			core.FormatEuros(line.Paid),
			core.FormatEuros(line.Balance))
	}
	fmt.Fprintf(w, "TOTAL\t%s\t\t\n", core.FormatEuros(st.Total))
	return w.Flush()
}

func printShares(path, costStr, strategyName string) error {
	dailyCost, err := core.ParseAmount(costStr)
	if err != nil {
		return err
	}

	strategy, err := services.GetShareStrategy(core.SharingType(strategyName))
	if err != nil {
		return err
	}

	prop, err := loadProperty(path)
	if err != nil {
		return err
	}

	shares, err := strategy.DailyShares(prop, dailyCost)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OCCUPANT\tDAILY SHARE")
	for _, occ := range prop.Occupants() {
		fmt.Fprintf(w, "%s\t%s\n", occ.FullName(), core.FormatEuros(shares[occ]))
	}
	return w.Flush()
}

func validate(path, fromStr, toStr string) error {
	prop, err := loadProperty(path)
	if err != nil {
		return err
	}

	fmt.Printf("household ok: %d rooms, %d occupants, %d utilities\n",
		len(prop.Rooms), len(prop.Occupants()), len(prop.Utilities))

	if fromStr == "" && toStr == "" {
		return nil
	}
	if fromStr == "" || toStr == "" {
		return fmt.Errorf("--from and --to must be given together")
	}

	from, to, err := parseWindow(fromStr, toStr)
	if err != nil {
		return err
	}

	var failed bool
	for _, u := range prop.Utilities {
		if err := u.ValidateCoverage(from, to); err != nil {
			fmt.Printf("  %s: %v\n", u.Name, err)
			failed = true
			continue
		}
		fmt.Printf("  %s: covers %s to %s\n", u.Name, from, to)
	}
	if failed {
		return fmt.Errorf("coverage validation failed")
	}
	return nil
}
