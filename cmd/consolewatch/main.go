// consolewatch tails the admin console's live data from a terminal: interview
// counts on every poll tick, humanized audit entries as they appear, and a
// debounced search prompt on stdin.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/mymind1423/interflow-admin/internal/audit"
	"github.com/mymind1423/interflow-admin/internal/config"
	"github.com/mymind1423/interflow-admin/internal/live"
	"github.com/mymind1423/interflow-admin/internal/platform"
	"github.com/mymind1423/interflow-admin/internal/poll"
	"github.com/mymind1423/interflow-admin/internal/search"
	"github.com/mymind1423/interflow-admin/internal/session"
)

func main() {
	cfg := config.Load()

	baseURL := flag.String("base", cfg.PlatformBaseURL, "platform base URL")
	token := flag.String("token", cfg.PlatformServiceToken, "admin bearer token")
	interval := flag.Duration("interval", cfg.LivePollInterval, "live poll interval")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelWarn,
		TimeFormat: time.TimeOnly,
	}))

	if *token == "" {
		fmt.Fprintln(os.Stderr, "a bearer token is required (-token or PLATFORM_SERVICE_TOKEN)")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := platform.NewClient(*baseURL, platform.StaticToken(*token), &http.Client{Timeout: cfg.PlatformTimeout}, nil)
	api := platform.NewAPI(client)

	sessions := session.NewManager(api, session.NewMemoryStore(), cfg.SessionCacheTTL)
	principal, err := sessions.Verify(ctx, *token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "not signed in as an admin: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("watching as %s (%s)\n", principal.DisplayName, principal.Email)

	livePoller := poll.New("live", *interval, api.GetInterviews, logger,
		poll.WithTimeout[[]platform.Interview](cfg.PlatformTimeout))
	livePoller.Start(ctx)
	defer livePoller.Stop()

	auditPoller := poll.New("audit", cfg.AuditPollInterval, api.GetLogs, logger,
		poll.WithTimeout[[]platform.AuditLogEntry](cfg.PlatformTimeout))
	auditPoller.Start(ctx)
	defer auditPoller.Stop()

	debouncer := search.NewDebouncer(cfg.SearchDebounce, cfg.SearchMinLength, func(q string) {
		results, err := api.GlobalSearch(ctx, q)
		if err != nil {
			fmt.Fprintf(os.Stderr, "search %q failed: %v\n", q, err)
			return
		}
		fmt.Printf("search %q: %d students, %d companies, %d jobs\n",
			q, len(results.Students), len(results.Companies), len(results.Jobs))
	})
	defer debouncer.Stop()

	go readSearches(ctx, debouncer)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	seen := map[string]bool{}
	printLive := func() {
		interviews, fetchedAt, ok := livePoller.Snapshot()
		if !ok {
			return
		}
		_, counts := live.Classify(interviews, time.Now().UTC(), cfg.SlotDuration)
		fmt.Printf("[%s] live: %d active, %d in queue, %d completed\n",
			fetchedAt.Format(time.TimeOnly), counts.Active, counts.Queue, counts.Completed)
	}
	printAudit := func() {
		entries, _, ok := auditPoller.Snapshot()
		if !ok {
			return
		}
		for _, entry := range audit.HumanizeAll(entries) {
			if seen[entry.ID] {
				continue
			}
			seen[entry.ID] = true
			fmt.Printf("audit: %s\n", entry.Summary)
		}
	}

	printLive()
	printAudit()
	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nstopped")
			return
		case <-ticker.C:
			printLive()
			printAudit()
		}
	}
}

// readSearches feeds stdin lines through the debouncer so rapid re-typing
// only dispatches the final query.
func readSearches(ctx context.Context, debouncer *search.Debouncer) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		debouncer.Update(scanner.Text())
	}
}
