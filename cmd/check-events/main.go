package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"eventflow/internal/config"
	"eventflow/internal/logging"
	"eventflow/internal/models"
	"eventflow/internal/repositories"
	"eventflow/internal/services"

	"github.com/spf13/pflag"
)

type options struct {
	tickets    bool
	search     string
	filter     string
	categories []string
	sortBy     string
	now        string
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("check-events", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.BoolVar(&opts.tickets, "tickets", false, "list purchased tickets instead of catalog events")
	flagSet.StringVar(&opts.search, "search", "", "case-insensitive search text")
	flagSet.StringVar(&opts.filter, "filter", "", "ticket filter: all, upcoming, past, valid, used, expired")
	flagSet.StringSliceVar(&opts.categories, "category", nil, "event category (repeatable)")
	flagSet.StringVar(&opts.sortBy, "sort", "", "sort key, e.g. date-asc, price-desc, title-asc")
	flagSet.StringVar(&opts.now, "now", "", "evaluate date filters as of this day (YYYY-MM-DD)")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	clock := time.Now
	if opts.now != "" {
		day, err := time.Parse("2006-01-02", opts.now)
		if err != nil {
			return fmt.Errorf("invalid --now %q: %w", opts.now, err)
		}
		clock = func() time.Time { return day }
	}

	logger := logging.New(config.LogConfig{Level: "warn", Format: "text"})

	if opts.tickets {
		repo, err := repositories.NewFixtureTicketRepository()
		if err != nil {
			return err
		}
		svc := services.NewTicketService(repo, services.TicketOptions{Clock: clock, Logger: logger})
		printTickets(out, svc.List(opts.filter, opts.search, opts.sortBy))
		return nil
	}

	repo, err := repositories.NewFixtureEventRepository()
	if err != nil {
		return err
	}
	svc := services.NewEventDiscoveryService(repo, services.DiscoveryOptions{
		PageSize: len(repo.List()),
		Clock:    clock,
		Logger:   logger,
	})
	printEvents(out, svc.Discover(context.Background(), services.DiscoveryFilters{
		Query:      opts.search,
		Categories: opts.categories,
		SortBy:     opts.sortBy,
	}))
	return nil
}

func printEvents(out io.Writer, result *services.DiscoveryResult) {
	fmt.Fprintf(out, "Events: %d of %d (sort %s)\n\n", result.MatchedCount, result.TotalCount, result.SortBy)

	if len(result.Events) == 0 {
		fmt.Fprintf(out, "No events (emptied by %s)\n", result.EmptyStage)
	} else {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDATE\tTITLE\tPRICE\tLEFT\tCATEGORIES")
		for _, e := range result.Events {
			fmt.Fprintf(tw, "%d\t%s\t%s\t$%s\t%d\t%s\n",
				e.ID, e.Date.Format("2006-01-02"), e.Title, models.FormatAmount(e.Price), e.TicketsLeft, strings.Join(e.Categories, ", "))
		}
		tw.Flush()
	}

	printFacets(out, "Categories", result.Categories)
	printFacets(out, "Event types", result.EventTypes)
}

func printTickets(out io.Writer, result *services.TicketListResult) {
	fmt.Fprintf(out, "Tickets: %d (filter %s, sort %s)\n\n", len(result.Tickets), result.Filter, result.SortBy)

	if len(result.Tickets) == 0 {
		fmt.Fprintf(out, "No tickets (%s)\n", result.EmptyKind)
	} else {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tEVENT DATE\tEVENT\tTYPE\tSTATUS\tORDER")
		for _, t := range result.Tickets {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				t.ID, t.EventDate.Format("2006-01-02"), t.EventTitle, t.TicketType, t.Status, t.OrderID)
		}
		tw.Flush()
	}

	printFacets(out, "Counts", result.Counts)
}

func printFacets(out io.Writer, title string, facets []services.FacetCount) {
	parts := make([]string, 0, len(facets))
	for _, f := range facets {
		parts = append(parts, fmt.Sprintf("%s (%d)", f.Label, f.Count))
	}
	fmt.Fprintf(out, "\n%s: %s\n", title, strings.Join(parts, ", "))
}
