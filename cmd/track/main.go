// Command track is the command-line client for the tracking core.
// It talks to the carriers directly, without going through the HTTP
// gateway.
//
// Usage:
//
//	track carriers
//	track [-language CODE] [-json] <carrier> <tracking-number>
//	track [-language CODE] [-json] all <tracking-number>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/parceltrack/tracking-system/internal/core/domain"
	"github.com/parceltrack/tracking-system/internal/core/service"
	"github.com/parceltrack/tracking-system/internal/infrastructure/config"
	"github.com/parceltrack/tracking-system/internal/infrastructure/httpclient"
	"github.com/parceltrack/tracking-system/internal/infrastructure/provider"
	"github.com/parceltrack/tracking-system/pkg/logger"
)

func main() {
	language := flag.String("language", "", "preferred language (e.g. en, es_ES)")
	asJSON := flag.Bool("json", false, "print the raw JSON response")
	flag.Usage = usage
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	client := httpclient.New(cfg.HTTPTimeout)
	registry := provider.NewDefaultRegistry(client, cfg, log)
	tracker := service.NewTrackerService(registry, log)

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	switch {
	case args[0] == "carriers":
		for _, name := range tracker.Carriers() {
			fmt.Println(name)
		}

	case args[0] == "all" && len(args) == 2:
		results, err := tracker.TrackAll(ctx, args[1], *language)
		if err != nil {
			fatal(err)
		}
		if *asJSON {
			printJSON(results)
			return
		}
		found := false
		for _, resp := range results {
			if !resp.HasShipments() {
				continue
			}
			found = true
			printResponse(resp, trackingURL(registry, resp.Provider, args[1], *language))
			fmt.Println()
		}
		if !found {
			fmt.Printf("no carrier found shipment %s\n", args[1])
		}

	case len(args) == 2:
		resp, err := tracker.Track(ctx, args[0], args[1], *language)
		if err != nil {
			fatal(err)
		}
		if *asJSON {
			printJSON(resp)
			return
		}
		printResponse(resp, trackingURL(registry, resp.Provider, args[1], *language))

	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  track carriers
  track [-language CODE] [-json] <carrier> <tracking-number>
  track [-language CODE] [-json] all <tracking-number>
`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal(err)
	}
}

func trackingURL(registry *provider.Registry, carrier, code, language string) string {
	p, err := registry.Resolve(carrier)
	if err != nil {
		return ""
	}
	return p.TrackingURL(code, language)
}

func printResponse(resp *domain.TrackingResponse, url string) {
	if !resp.HasShipments() {
		fmt.Printf("%s: no shipment found\n", resp.Provider)
		return
	}
	for _, sh := range resp.Shipments {
		fmt.Printf("%s %s  [%s]\n", resp.Provider, sh.TrackingNumber, sh.Status)
		if sh.ServiceType != "" {
			fmt.Printf("  service:     %s\n", sh.ServiceType)
		}
		if sh.Origin != "" || sh.Destination != "" {
			fmt.Printf("  route:       %s -> %s\n", sh.Origin, sh.Destination)
		}
		if sh.EstimatedDelivery != nil {
			fmt.Printf("  estimated:   %s\n", sh.EstimatedDelivery.Format("2006-01-02 15:04 MST"))
		}
		if sh.ActualDelivery != nil {
			fmt.Printf("  delivered:   %s\n", sh.ActualDelivery.Format("2006-01-02 15:04 MST"))
		}
		for _, ev := range sh.Events {
			line := fmt.Sprintf("  %s  %s", ev.Timestamp.Format("2006-01-02 15:04"), ev.Status)
			if ev.Location != "" {
				line += "  @ " + ev.Location
			}
			fmt.Println(line)
		}
	}
	if url != "" {
		fmt.Printf("  %s\n", url)
	}
}
